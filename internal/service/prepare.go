package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/catalog"
	"github.com/hlecates/artifact-ijcar26-luna/internal/conf"
	"github.com/hlecates/artifact-ijcar26-luna/internal/job"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	"github.com/hlecates/artifact-ijcar26-luna/internal/policy"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// preparedRun is everything validated and loaded before the first submission
// or local task.
type preparedRun struct {
	sets      []model.BenchmarkSet
	resources model.ResourceConfig
	command   model.CommandSpec
}

// prepare runs the validation phases shared by cluster submission and local
// execution. Nothing is written to disk; every failure here aborts while no
// job or task output exists yet.
func prepare(cfg *viper.Viper, selector string, resources model.ResourceParams, command job.CommandOptions, workRoot string) (*preparedRun, error) {
	// 1. discover the benchmark catalog
	benchCfg := conf.GetBenchmarksConfig(cfg)
	cat, err := catalog.Discover(benchCfg.Dir, benchCfg.Prefix)
	if err != nil {
		return nil, err
	}

	// 2. resolve the selector expression
	sets, err := cat.Resolve(selector)
	if err != nil {
		return nil, err
	}

	// 3. validate the resource envelope
	partitions, err := conf.GetPartitions(cfg)
	if err != nil {
		return nil, errs.NewConfigError("partitions config", err)
	}
	pol := policy.New(partitions, cfg.GetInt("limits.max_time"))
	validated, err := pol.Validate(resources)
	if err != nil {
		return nil, err
	}

	// 4. build the command variant; framework defaults come from config
	fwCfg := conf.GetFrameworkConfig(cfg)
	if command.EntryRel == "" {
		command.EntryRel = fwCfg.EntryRel
	}
	if command.Runtime == "" {
		command.Runtime = fwCfg.Runtime
	}
	command.NumGPUs = validated.NumGPUs
	cmdSpec, err := job.NewCommandSpec(command)
	if err != nil {
		return nil, err
	}

	// 5. load every selected set and preflight its working directory, so a
	// failure on the last set cannot strand earlier sets already submitted
	loaded := make([]model.BenchmarkSet, 0, len(sets))
	for _, set := range sets {
		ls, err := cat.Load(set)
		if err != nil {
			return nil, err
		}
		workDir, err := filepath.Abs(filepath.Join(workRoot, set.Name))
		if err != nil {
			return nil, errs.NewBuildError("resolve working directory", err)
		}
		if _, err := os.Stat(workDir); err == nil {
			return nil, errs.New(errs.ErrCodeWorkDirExists,
				fmt.Sprintf("working directory %s already exists", workDir))
		}
		loaded = append(loaded, ls)
	}

	zap.L().Debug("run prepared",
		zap.Int("sets", len(loaded)),
		zap.String("partition", validated.Partition),
		zap.String("command", string(cmdSpec.Kind)),
	)
	return &preparedRun{sets: loaded, resources: validated, command: cmdSpec}, nil
}
