package model

// MeasureMode selects the wrapper enforcing per-task limits.
type MeasureMode string

const (
	// MeasureResourceLimited wraps the command with runlim: CPU/wall-time and
	// memory ceilings plus a usage report.
	MeasureResourceLimited MeasureMode = "resource-limited"
	// MeasureTimeoutWrapped wraps with a hard wall-clock timeout and a
	// separate timing report. Used whenever GPUs are requested, since runlim
	// cannot account for GPU work.
	MeasureTimeoutWrapped MeasureMode = "timeout-wrapped"
)

// CommandKind selects the invocation variant, fixed for a whole run.
type CommandKind string

const (
	CommandDirect    CommandKind = "direct"    // invoke a solver binary
	CommandFramework CommandKind = "framework" // drive a verifier through a generated config
)

// FrameworkSpec describes a framework-mode invocation.
type FrameworkSpec struct {
	Dir       string `json:"dir"`     // framework checkout root
	Entry     string `json:"entry"`   // absolute path of the entry script
	Runtime   string `json:"runtime"` // interpreter binary
	Device    string `json:"device"`  // cuda or cpu
	ConfigDoc []byte `json:"-"`       // YAML document; per-task paths stay as shell variables
}

// CommandSpec is the active command variant plus user-supplied trailing
// options. Exactly one of SolverPath/Framework is set.
type CommandSpec struct {
	Kind       CommandKind    `json:"kind"`
	SolverPath string         `json:"solver_path,omitempty"`
	Framework  *FrameworkSpec `json:"framework,omitempty"`
	ExtraArgs  []string       `json:"extra_args,omitempty"`
}

// SubmitOptions are scheduler options passed through on the sbatch command
// line rather than as script directives.
type SubmitOptions struct {
	ExcludeNodes string `json:"exclude_nodes,omitempty"` // sbatch --exclude list
	MailUser     string `json:"mail_user,omitempty"`
}

// JobDescriptor is everything the dispatcher needs to submit one benchmark
// set: built once, consumed immediately, never mutated after submission.
type JobDescriptor struct {
	Set       BenchmarkSet   `json:"set"`
	WorkDir   string         `json:"work_dir"`   // absolute per-set working directory
	BenchFile string         `json:"bench_file"` // copied set file inside WorkDir
	ArraySize int            `json:"array_size"`
	Throttle  int            `json:"throttle"` // max simultaneous tasks; 0 = unthrottled
	Resources ResourceConfig `json:"resources"`
	JobName   string         `json:"job_name"`
	Measure   MeasureMode    `json:"measure"`
	Command   CommandSpec    `json:"command"`
	MultiArg  bool           `json:"multi_arg"` // pass all line fields through verbatim
	SubmitID  int64          `json:"submit_id"` // snowflake ID tagged onto the submission
}
