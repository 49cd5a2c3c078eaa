// Package descriptor writes generated compose descriptors to disk.
package descriptor

import (
	"errors"
	"fmt"
	"os"

	"github.com/artpar/gpudeploy/internal/core/compose"
	"github.com/moby/sys/atomicwriter"
)

// DefaultPath is where the generator writes unless configured otherwise.
const DefaultPath = "docker-compose.yml"

// FileMode is the permission of written descriptors.
const FileMode os.FileMode = 0o644

var ErrWriteFailed = errors.New("descriptor write failed")

// WriteError wraps a failed write with its target path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailed, e.Err}
}

// Options controls WriteDescriptor.
type Options struct {
	// Validate loads the serialized descriptor through compose-go before
	// anything touches the disk.
	Validate bool
}

// WriteDescriptor serializes d and atomically replaces path with it. The
// previous file, if any, is untouched on every failure path.
func WriteDescriptor(d *compose.Descriptor, path string, opts Options) error {
	content, err := compose.Marshal(d)
	if err != nil {
		return err
	}
	if opts.Validate {
		if err := compose.Validate(content); err != nil {
			return err
		}
	}
	return WriteFile(path, content)
}

// WriteFile atomically replaces path with content.
func WriteFile(path string, content []byte) error {
	if err := atomicwriter.WriteFile(path, content, FileMode); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
