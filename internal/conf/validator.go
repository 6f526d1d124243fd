package conf

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// ValidateConfig checks every config section; the first failure wins.
func ValidateConfig(cfg *viper.Viper) error {
	if err := validateBenchmarksConfig(cfg); err != nil {
		return errs.Wrap(errs.ErrCodeConfigInvalid, "benchmarks config", err)
	}

	if err := validateLimitsConfig(cfg); err != nil {
		return errs.Wrap(errs.ErrCodeConfigInvalid, "limits config", err)
	}

	if err := validatePartitionsConfig(cfg); err != nil {
		return errs.Wrap(errs.ErrCodeConfigInvalid, "partitions config", err)
	}

	if err := validateSchedulerConfig(cfg); err != nil {
		return errs.Wrap(errs.ErrCodeConfigInvalid, "scheduler config", err)
	}

	if err := validateLogConfig(cfg); err != nil {
		return errs.Wrap(errs.ErrCodeConfigInvalid, "log config", err)
	}

	return nil
}

// validateBenchmarksConfig checks the benchmark discovery settings.
func validateBenchmarksConfig(cfg *viper.Viper) error {
	if cfg.GetString("benchmarks.dir") == "" {
		return fmt.Errorf("benchmarks.dir must not be empty")
	}

	if cfg.GetString("benchmarks.prefix") == "" {
		return fmt.Errorf("benchmarks.prefix must not be empty")
	}

	return nil
}

// validateLimitsConfig checks the global resource bounds.
func validateLimitsConfig(cfg *viper.Viper) error {
	maxTime := cfg.GetInt("limits.max_time")
	if maxTime <= 0 || maxTime > 30*86400 {
		return fmt.Errorf("invalid limits.max_time: %d (want 1 second to 30 days)", maxTime)
	}

	return nil
}

// validatePartitionsConfig checks a user-supplied partition table, if any.
func validatePartitionsConfig(cfg *viper.Viper) error {
	if !cfg.IsSet("partitions") {
		return nil
	}

	parts, err := GetPartitions(cfg)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("partitions is set but empty")
	}
	for i, p := range parts {
		if p.Name == "" {
			return fmt.Errorf("partition %d has no name", i)
		}
		if p.MaxMemoryMB <= 0 {
			return fmt.Errorf("partition %q: invalid max_memory_mb %d", p.Name, p.MaxMemoryMB)
		}
		if p.MaxCPUs <= 0 {
			return fmt.Errorf("partition %q: invalid max_cpus %d", p.Name, p.MaxCPUs)
		}
		if p.GPUs < 0 {
			return fmt.Errorf("partition %q: invalid gpus %d", p.Name, p.GPUs)
		}
	}

	return nil
}

// validateSchedulerConfig checks the submission and measurement tool settings.
func validateSchedulerConfig(cfg *viper.Viper) error {
	if cfg.GetString("scheduler.sbatch_path") == "" {
		return fmt.Errorf("scheduler.sbatch_path must not be empty")
	}

	limit := cfg.GetInt("scheduler.gpu_task_limit")
	if limit < 1 || limit > 1024 {
		return fmt.Errorf("invalid scheduler.gpu_task_limit: %d (want 1-1024)", limit)
	}

	for _, key := range []string{"measure.runlim_path", "measure.timeout_path", "measure.time_path"} {
		if cfg.GetString(key) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}

	if cfg.GetString("framework.entry") == "" {
		return fmt.Errorf("framework.entry must not be empty")
	}
	if cfg.GetString("framework.runtime") == "" {
		return fmt.Errorf("framework.runtime must not be empty")
	}

	return nil
}

// validateLogConfig checks the log section.
func validateLogConfig(cfg *viper.Viper) error {
	level := cfg.GetString("log.level")
	switch level {
	case constants.LogLevelDebug, constants.LogLevelInfo, constants.LogLevelWarn, constants.LogLevelError:
	default:
		return fmt.Errorf("invalid log.level: %s (want debug/info/warn/error)", level)
	}

	if cfg.GetInt("log.max_size") <= 0 {
		return fmt.Errorf("invalid log.max_size: %d", cfg.GetInt("log.max_size"))
	}
	if cfg.GetInt("log.max_age") <= 0 {
		return fmt.Errorf("invalid log.max_age: %d", cfg.GetInt("log.max_age"))
	}
	if cfg.GetInt("log.max_backups") <= 0 {
		return fmt.Errorf("invalid log.max_backups: %d", cfg.GetInt("log.max_backups"))
	}

	return nil
}

// SetDefaultValues installs the built-in defaults.
func SetDefaultValues(cfg *viper.Viper) {
	// Benchmark discovery defaults
	cfg.SetDefault("benchmarks.dir", constants.DefaultBenchmarkDir)
	cfg.SetDefault("benchmarks.prefix", constants.BenchmarkFilePrefix)

	// Global limits
	cfg.SetDefault("limits.max_time", constants.MaxTimeLimitSeconds)

	// Scheduler defaults
	cfg.SetDefault("scheduler.sbatch_path", constants.DefaultSbatchPath)
	cfg.SetDefault("scheduler.gpu_task_limit", constants.GPUTaskLimit)

	// Measurement wrapper defaults
	cfg.SetDefault("measure.runlim_path", constants.DefaultRunlimPath)
	cfg.SetDefault("measure.timeout_path", constants.DefaultTimeoutPath)
	cfg.SetDefault("measure.time_path", constants.DefaultTimePath)

	// Framework defaults
	cfg.SetDefault("framework.entry", constants.FrameworkEntryRel)
	cfg.SetDefault("framework.runtime", constants.DefaultRuntimePath)

	// Store defaults: endpoint stays empty until configured
	cfg.SetDefault("store.endpoint", "")
	cfg.SetDefault("store.bucket", "benchmarks")
	cfg.SetDefault("store.prefix", "")
	cfg.SetDefault("store.use_ssl", true)

	// Log defaults
	cfg.SetDefault("log.level", constants.LogLevelInfo)
	cfg.SetDefault("log.filename", constants.DefaultLogFile)
	cfg.SetDefault("log.max_size", constants.DefaultLogMaxSize)
	cfg.SetDefault("log.max_age", constants.DefaultLogMaxAge)
	cfg.SetDefault("log.max_backups", constants.DefaultLogBackups)

	// Snowflake defaults
	cfg.SetDefault("snowflake.machine_id", 1)
	cfg.SetDefault("snowflake.start_time", "2025-01-01")
}

// GetBenchmarksConfig reads the benchmark discovery section.
func GetBenchmarksConfig(cfg *viper.Viper) BenchmarksConfig {
	return BenchmarksConfig{
		Dir:    cfg.GetString("benchmarks.dir"),
		Prefix: cfg.GetString("benchmarks.prefix"),
	}
}

// GetSchedulerConfig reads the scheduler section.
func GetSchedulerConfig(cfg *viper.Viper) SchedulerConfig {
	return SchedulerConfig{
		SbatchPath:   cfg.GetString("scheduler.sbatch_path"),
		GPUTaskLimit: cfg.GetInt("scheduler.gpu_task_limit"),
	}
}

// GetMeasureConfig reads the measurement wrapper section.
func GetMeasureConfig(cfg *viper.Viper) MeasureConfig {
	return MeasureConfig{
		RunlimPath:  cfg.GetString("measure.runlim_path"),
		TimeoutPath: cfg.GetString("measure.timeout_path"),
		TimePath:    cfg.GetString("measure.time_path"),
	}
}

// GetFrameworkConfig reads the framework section.
func GetFrameworkConfig(cfg *viper.Viper) FrameworkConfig {
	return FrameworkConfig{
		EntryRel: cfg.GetString("framework.entry"),
		Runtime:  cfg.GetString("framework.runtime"),
	}
}

// GetStoreConfig reads the object-store section.
func GetStoreConfig(cfg *viper.Viper) StoreConfig {
	return StoreConfig{
		Endpoint:  cfg.GetString("store.endpoint"),
		AccessKey: cfg.GetString("store.access_key"),
		SecretKey: cfg.GetString("store.secret_key"),
		Bucket:    cfg.GetString("store.bucket"),
		Prefix:    cfg.GetString("store.prefix"),
		UseSSL:    cfg.GetBool("store.use_ssl"),
	}
}

// GetPartitions reads a user-supplied partition table. An unset key returns
// nil, which callers treat as "use the built-in table".
func GetPartitions(cfg *viper.Viper) ([]model.Partition, error) {
	if !cfg.IsSet("partitions") {
		return nil, nil
	}
	var parts []model.Partition
	if err := cfg.UnmarshalKey("partitions", &parts); err != nil {
		return nil, fmt.Errorf("parse partitions: %w", err)
	}
	return parts, nil
}
