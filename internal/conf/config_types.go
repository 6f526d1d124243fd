package conf

// BenchmarksConfig locates the benchmark-set files.
type BenchmarksConfig struct {
	Dir    string // directory scanned non-recursively
	Prefix string // file-name prefix stripped to obtain set names
}

// SchedulerConfig covers the external submission command.
type SchedulerConfig struct {
	SbatchPath   string
	GPUTaskLimit int // simultaneous array tasks for GPU jobs
}

// MeasureConfig holds the measurement wrapper paths.
type MeasureConfig struct {
	RunlimPath  string
	TimeoutPath string
	TimePath    string
}

// FrameworkConfig covers framework-mode invocation.
type FrameworkConfig struct {
	EntryRel string // entry script relative to the framework directory
	Runtime  string // default interpreter, overridable per run
}

// StoreConfig holds the object-store credentials for benchmark sync.
type StoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}
