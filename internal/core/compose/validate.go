package compose

import (
	"context"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// ProjectName is used when loading a descriptor for validation.
const ProjectName = "gpu-workers"

// Validate loads serialized descriptor content through compose-go and
// reports whether a compose runtime would accept it.
func Validate(content []byte) error {
	if strings.TrimSpace(string(content)) == "" {
		return NewBuildError("", "descriptor is empty", ErrInvalidDescriptor)
	}

	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil || dict == nil {
		return NewBuildError("", "invalid YAML syntax", ErrInvalidDescriptor)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(ProjectName, false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		opts.SkipNormalization = true
		opts.SkipExtends = true
		opts.ResolvePaths = false
	})
	if err != nil {
		return NewBuildError("", err.Error(), ErrInvalidDescriptor)
	}

	if len(project.Services) == 0 {
		return NewBuildError("services", "descriptor defines no services", ErrInvalidDescriptor)
	}
	return nil
}
