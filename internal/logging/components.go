package logging

// Component constants for structured logging
const (
	ComponentStartup  = "startup"
	ComponentCodec    = "codec"
	ComponentDither   = "dither"
	ComponentPipeline = "pipeline"
	ComponentAPI      = "api"
	ComponentDatabase = "database"
	ComponentStorage  = "storage"
	ComponentPresets  = "presets"
	ComponentPoller   = "poller"
)
