package service

import (
	"context"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/job"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	"github.com/hlecates/artifact-ijcar26-luna/internal/runner"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// RunParams carries the local run command's flags after CLI parsing.
type RunParams struct {
	Selector  string
	Resources model.ResourceParams
	Command   job.CommandOptions
	WorkDir   string
	MultiArg  bool
	// TaskIndex executes a single 1-based task per set; 0 runs every task.
	TaskIndex int
}

// RunLocal builds each selected set's working directory and executes its
// tasks on this host instead of submitting them. It returns the number of
// tasks that finished with a failure report.
func RunLocal(ctx context.Context, cfg *viper.Viper, params RunParams) (int, error) {
	startTime := time.Now()

	prep, err := prepare(cfg, params.Selector, params.Resources, params.Command, params.WorkDir)
	if err != nil {
		return 0, err
	}
	if prep.command.Kind == model.CommandFramework {
		return 0, errs.New(errs.ErrCodeLocalRun,
			"framework mode is not supported locally; submit to the cluster instead")
	}

	builder := &job.Builder{
		WorkRoot:  params.WorkDir,
		Resources: prep.resources,
		Command:   prep.command,
		MultiArg:  params.MultiArg,
	}
	local := runner.NewLocalRunner()

	// 6. build each set's working directory and run its tasks in order
	totalFailed := 0
	for _, set := range prep.sets {
		desc, err := builder.Build(set)
		if err != nil {
			return totalFailed, err
		}

		if params.TaskIndex > 0 {
			if err := local.RunTask(ctx, desc, params.TaskIndex); err != nil {
				return totalFailed, err
			}
			continue
		}

		failed, err := local.RunSet(ctx, desc)
		totalFailed += failed
		if err != nil {
			return totalFailed, err
		}
	}

	zap.L().Info("local run pipeline finished",
		zap.Int("sets", len(prep.sets)),
		zap.Int("failed_tasks", totalFailed),
		zap.Duration("duration", time.Since(startTime)),
	)
	return totalFailed, nil
}
