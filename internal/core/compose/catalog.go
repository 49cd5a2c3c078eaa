package compose

import "strings"

// =============================================================================
// Worker Catalog
// =============================================================================

// DeviceIndexKey is the environment variable carrying a worker's GPU ordinal.
const DeviceIndexKey = "NVIDIA_DEVICE"

const (
	WatcherServiceName  = "watchtower"
	DefaultWatcherImage = "containrrr/watchtower"
)

// modelProcessorQueues is the full queue set consumed by model_processor.
var modelProcessorQueues = []string{
	"erpr_grading_pipeline_critical", "erpr_grading_pipeline", "large_erpr_grading_pipeline",
	"brca_grading_pipeline_critical", "brca_grading_pipeline", "large_brca_grading_pipeline",
	"her2_grading_pipeline_critical", "her2_grading_pipeline", "large_her2_grading_pipeline",
	"unet_pipeline_critical", "unet_pipeline", "large_unet_pipeline",
	"yolo_pipeline_critical", "yolo_pipeline", "large_yolo_pipeline",
	"detr_pipeline_critical", "detr_pipeline", "large_detr_pipeline",
	"dino_pipeline_critical", "dino_pipeline", "large_dino_pipeline",
	"gen_annot_pipeline_critical", "gen_annot_pipeline", "large_gen_annot_pipeline",
	"ki67_grading_pipeline_critical", "ki67_grading_pipeline", "large_ki67_grading_pipeline",
	"unet_gpu_worker_critical", "unet_gpu_worker", "large_unet_gpu_worker",
	"dino_gpu_worker_critical", "dino_gpu_worker", "large_dino_gpu_worker",
	"yolo_gpu_worker_critical", "yolo_gpu_worker", "large_yolo_gpu_worker",
	"detr_gpu_worker_critical", "detr_gpu_worker", "large_detr_gpu_worker",
	"unet_mask", "cog_analysis", "flourescense_tiff", "compare_layer",
}

// Catalog returns the worker templates in deployment order. The returned
// slice is freshly built on every call and safe to modify.
func Catalog(secrets Secrets) []WorkerTemplate {
	vault := func() Environment {
		return Environment{
			passThrough("VAULT_ADDR", secrets.VaultAddress),
			passThrough("VAULT_TOKEN", secrets.VaultToken),
		}
	}

	modelEnv := Environment{
		{Name: "celery_key_her2", Value: "her2.critical.infer,her2.infer,large.her2.infer"},
		{Name: "celery_queue_her2", Value: "her2_grading_pipeline_critical,her2_grading_pipeline,large_her2_grading_pipeline"},
		{Name: "celery_key_brca", Value: "brca.critical.infer,brca.infer,large.brca.infer"},
		{Name: "celery_queue_brca", Value: "brca_grading_pipeline_critical,brca_grading_pipeline,large_brca_grading_pipeline"},
		{Name: "celery_key_erpr", Value: "erpr.critical.infer,erpr.infer,large.erpr.infer"},
		{Name: "celery_queue_erpr", Value: "erpr_grading_pipeline_critical,erpr_grading_pipeline,large_erpr_grading_pipeline"},
		{Name: "celery_key_unet", Value: "unet.critical.infer,unet.infer,large.unet.infer"},
		{Name: "celery_queue_unet", Value: "unet_pipeline_critical,unet_pipeline,large_unet_pipeline"},
		{Name: "celery_key_yolo", Value: "yolo.critical.infer,yolo.infer,large.yolo.infer"},
		{Name: "celery_queue_yolo", Value: "yolo_pipeline_critical,yolo_pipeline,large_yolo_pipeline"},
		{Name: "celery_key_detr", Value: "detr.critical.infer,detr.infer,large.detr.infer"},
		{Name: "celery_queue_detr", Value: "detr_pipeline_critical,detr_pipeline,large_detr_pipeline"},
		{Name: "celery_key_dino", Value: "dino.critical.infer,dino.infer,large.dino.infer"},
		{Name: "celery_queue_dino", Value: "dino_pipeline_critical,dino_pipeline,large_dino_pipeline"},
		{Name: "celery_key_gen_annot", Value: "gen_annot.critical.infer,gen_annot.infer,large.gen_annot.infer"},
		{Name: "celery_queue_gen_annot", Value: "gen_annot_pipeline_critical,gen_annot_pipeline,large_gen_annot_pipeline"},
		{Name: "celery_queue_ki67", Value: "ki67_grading_pipeline_critical,ki67_grading_pipeline,large_ki67_grading_pipeline"},
		{Name: "celery_key_ki67", Value: "ki67.critical.infer,ki67.infer,large.ki67.infer"},
		{Name: "CELERY_QUEUE_UNET_GPU_WORKER", Value: "unet_gpu_worker_critical,unet_gpu_worker,large_unet_gpu_worker"},
		{Name: "CELERY_KEY_UNET_GPU_WORKER", Value: "unet.gpu.worker.critical,unet.gpu.worker,large.unet.gpu.worker"},
		{Name: "CELERY_QUEUE_DINO_GPU_WORKER", Value: "dino_gpu_worker_critical,dino_gpu_worker,large_dino_gpu_worker"},
		{Name: "CELERY_KEY_DINO_GPU_WORKER", Value: "dino.gpu.worker.critical,dino.gpu.worker,large.dino.gpu.worker"},
		{Name: "CELERY_QUEUE_YOLO_GPU_WORKER", Value: "yolo_gpu_worker_critical,yolo_gpu_worker,large_yolo_gpu_worker"},
		{Name: "CELERY_KEY_YOLO_GPU_WORKER", Value: "yolo.gpu.worker.critical,yolo.gpu.worker,large.yolo.gpu.worker"},
		{Name: "CELERY_QUEUE_DETR_GPU_WORKER", Value: "detr_gpu_worker_critical,detr_gpu_worker,large_detr_gpu_worker"},
		{Name: "CELERY_KEY_DETR_GPU_WORKER", Value: "detr.gpu.worker.critical,detr.gpu.worker,large.detr.gpu.worker"},
		{Name: "CELERY_KEY_UNET_MASK_IMG", Value: "unet.mask.infer"},
		{Name: "CELERY_QUEUE_MASK_IMG", Value: "unet_mask"},
		{Name: "environment", Value: "prod-secrets"},
		{Name: "batch_size", Value: "16"},
		{Name: DeviceIndexKey, Value: "0"},
	}
	modelEnv = append(modelEnv, vault()...)

	return []WorkerTemplate{
		{
			Name:    "model_processor",
			Image:   "amaranth2021/model_processor:v1",
			Command: celeryCommand("model_processor", modelProcessorQueues, "--concurrency 1 --prefetch-multiplier 1"),
			Env:     modelEnv,
			ShmSize: "10gb",
		},
		gpuWorker("yolo", "amaranth2021/yolo-worker:latest", nil, vault()),
		gpuWorker("unet", "amaranth2021/unet-worker:latest", []string{"unet_mask", "patient_analysis"}, vault()),
		gpuWorker("dino", "amaranth2021/dino-worker:latest", nil, vault()),
		gpuWorker("detr", "amaranth2021/detr-worker:latest", nil, vault()),
	}
}

// gpuWorker builds the template for a single-model worker that consumes the
// "<model>_gpu_worker" queue family plus any extra queues.
func gpuWorker(model, image string, extraQueues []string, vault Environment) WorkerTemplate {
	name := model + "_worker"
	queues := []string{
		model + "_gpu_worker",
		"large_" + model + "_gpu_worker",
		model + "_gpu_worker_critical",
	}
	keys := []string{
		model + ".gpu.worker",
		"large." + model + ".gpu.worker",
		model + ".gpu.worker.critical",
	}

	env := Environment{
		{Name: "CELERY_KEY", Value: strings.Join(keys, ",")},
		{Name: "CELERY_QUEUE", Value: strings.Join(queues, ",")},
	}
	env = append(env, vault...)
	env = append(env, EnvVar{Name: DeviceIndexKey, Value: "0"})

	return WorkerTemplate{
		Name:    name,
		Image:   image,
		Command: celeryCommand(name, append(queues, extraQueues...), "--concurrency=1"),
		Env:     env,
	}
}

func celeryCommand(node string, queues []string, tail string) string {
	return `bash -c "celery -A main worker -l info -Q ` + strings.Join(queues, ",") +
		` -E -n ` + node + `@%h ` + tail + `"`
}

func passThrough(name, value string) EnvVar {
	return EnvVar{Name: name, Value: value, Unset: value == ""}
}

// =============================================================================
// Watcher Service
// =============================================================================

// watcherTemplate renders the update report posted by the watcher.
const watcherTemplate = `{{- if .Report -}}
  {{- with .Report -}}
    {{len .Scanned}} Scanned, {{len .Updated}} Updated, {{len .Failed}} Failed
    {{- range .Updated}}
    - {{.Name}} ({{.ImageName}}): {{.CurrentImageID.ShortID}} updated to {{.LatestImageID.ShortID}}
    {{- end -}}
    {{- range .Fresh}}
    - {{.Name}} ({{.ImageName}}): {{.State}}
    {{- end -}}
    {{- range .Skipped}}
    - {{.Name}} ({{.ImageName}}): {{.State}}: {{.Error}}
    {{- end -}}
    {{- range .Failed}}
    - {{.Name}} ({{.ImageName}}): {{.State}}: {{.Error}}
    {{- end -}}
  {{- end -}}
{{- else -}}
  {{range .Entries -}}{{.Message}}{{"\n"}}{{- end -}}
{{- end -}}`

// WatcherService returns the auxiliary service that keeps worker images current.
func WatcherService(cfg WatcherConfig) Service {
	image := cfg.Image
	if image == "" {
		image = DefaultWatcherImage
	}
	return Service{
		Name:  WatcherServiceName,
		Image: image,
		Volumes: []string{
			"/var/run/docker.sock:/var/run/docker.sock",
			"~/.docker/config.json:/config.json",
		},
		Environment: Environment{
			{Name: "WATCHTOWER_NOTIFICATION_REPORT", Value: "true"},
			passThrough("WATCHTOWER_NOTIFICATION_URL", cfg.NotificationURL),
			{Name: "WATCHTOWER_NOTIFICATION_TEMPLATE", Value: watcherTemplate},
		},
	}
}
