package constants

import "time"

// Benchmark discovery constants
const (
	// Benchmark-set files live flat in one directory, named <prefix><set-name>,
	// one verification task per line.
	DefaultBenchmarkDir = "./benchmarks"
	BenchmarkFilePrefix = "bench_"

	// Name of the verbatim copy placed in each set's working directory.
	BenchFileName = "benchmarks"

	CompressedSuffix = ".gz"

	WorkDirPerm = 0755
)

// Scheduler constants
const (
	DefaultSbatchPath = "sbatch"

	ScriptFileName = "job.sbatch"
	ScriptFilePerm = 0644

	// Stdout/stderr of the sbatch script itself (not the solver).
	SlurmOutputPattern = "slurm-%A_%a.log"

	// Per-task directory prefix in multi-argument mode.
	TaskDirPrefix = "slurm-"

	// Cluster-wide cap on simultaneously running array tasks for GPU jobs.
	GPUTaskLimit = 4

	MailType = "END,FAIL"
)

// Measurement constants
const (
	DefaultRunlimPath  = "runlim"
	DefaultTimeoutPath = "timeout"
	DefaultTimePath    = "/usr/bin/time"

	RunOutFileName = "run.out"    // solver stdout+stderr
	ReportFileName = "output.log" // measurement wrapper report

	RunlimReportMarker = "[runlim]"
	LocalReportMarker  = "[local]"
)

// Framework constants
const (
	// Entry script relative to the framework checkout.
	FrameworkEntryRel = "complete_verifier/abcrown.py"

	DefaultRuntimePath = "python3"

	FrameworkConfigName  = "config.yaml"
	FrameworkResultsName = "results.pkl"

	// Model files sit a fixed number of directory levels below the benchmark
	// root the framework expects as root_path.
	RootPathDepth = 5

	DeviceGPU = "cuda"
	DeviceCPU = "cpu"

	FrameworkBatchSize   = 4096
	FrameworkBoundMethod = "alpha-crown"
)

// Resource policy constants
const (
	DefaultPartition = "cpu-q"

	DefaultTimeLimitSeconds = 300
	DefaultMemoryMB         = 4000
	DefaultCPUs             = 2

	MaxTimeLimitSeconds = 86400
)

// Result compilation constants
const (
	ResultsFileName = "results.csv"
	SummaryFileName = "summary.csv"
)

// Store constants
const (
	StoreRequestTimeout = 5 * time.Minute
)

// Log constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultLogFile    = "" // console only unless configured
	DefaultLogMaxSize = 100
	DefaultLogMaxAge  = 30
	DefaultLogBackups = 5
)
