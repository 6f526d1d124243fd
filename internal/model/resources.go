package model

// Partition is one named node pool and its ceilings. A partition is
// GPU-capable iff GPUs > 0. The table is built-in (policy.DefaultPartitions)
// and can be replaced through the partitions config section.
type Partition struct {
	Name        string `mapstructure:"name" json:"name"`
	MaxMemoryMB int    `mapstructure:"max_memory_mb" json:"max_memory_mb"`
	MaxCPUs     int    `mapstructure:"max_cpus" json:"max_cpus"`
	GPUs        int    `mapstructure:"gpus" json:"gpus"` // per node; 0 = no GPUs
}

// ResourceParams are the raw user-supplied resource flags, before validation.
type ResourceParams struct {
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	UseWallTime      bool   `json:"use_wall_time"` // limit wall-clock instead of CPU time
	MemoryLimitMB    int    `json:"memory_limit_mb"`
	NumCPUs          int    `json:"num_cpus"`
	NumGPUs          int    `json:"num_gpus"`
	Partition        string `json:"partition"`
}

// ResourceConfig is the validated, normalized resource envelope. It is
// constructed only by policy.Validate and never mutated afterwards.
type ResourceConfig struct {
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	UseWallTime      bool   `json:"use_wall_time"`
	MemoryLimitMB    int    `json:"memory_limit_mb"`
	NumCPUs          int    `json:"num_cpus"`
	NumGPUs          int    `json:"num_gpus"` // normalized: ≥1 on GPU partitions
	Partition        string `json:"partition"`
}
