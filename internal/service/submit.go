package service

import (
	"context"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/conf"
	"github.com/hlecates/artifact-ijcar26-luna/internal/dispatch"
	"github.com/hlecates/artifact-ijcar26-luna/internal/job"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	"github.com/hlecates/artifact-ijcar26-luna/pkg/snowflake"
)

// SubmitParams carries the submit command's flags after CLI parsing.
type SubmitParams struct {
	Selector  string
	Resources model.ResourceParams
	Command   job.CommandOptions
	WorkDir   string
	JobName   string
	MultiArg  bool
	Options   model.SubmitOptions
	DryRun    bool
}

// SubmitResult pairs a benchmark set with the scheduler job it became.
type SubmitResult struct {
	Set   string
	JobID int64
}

// Submit runs the whole submission pipeline: catalog discovery, selection,
// resource validation, preflight, then one build and submit per set,
// strictly in selection order.
func Submit(ctx context.Context, cfg *viper.Viper, params SubmitParams) ([]SubmitResult, error) {
	startTime := time.Now()

	prep, err := prepare(cfg, params.Selector, params.Resources, params.Command, params.WorkDir)
	if err != nil {
		return nil, err
	}

	schedCfg := conf.GetSchedulerConfig(cfg)
	measureCfg := conf.GetMeasureConfig(cfg)

	builder := &job.Builder{
		WorkRoot:     params.WorkDir,
		Resources:    prep.resources,
		Command:      prep.command,
		MultiArg:     params.MultiArg,
		JobName:      params.JobName,
		GPUTaskLimit: schedCfg.GPUTaskLimit,
	}
	dispatcher := &dispatch.Dispatcher{
		SbatchPath: schedCfg.SbatchPath,
		Tools: dispatch.MeasureTools{
			RunlimPath:  measureCfg.RunlimPath,
			TimeoutPath: measureCfg.TimeoutPath,
			TimePath:    measureCfg.TimePath,
		},
		DryRun: params.DryRun,
	}

	// 6. build and submit one set at a time; a failed submission stops the
	// remainder while already-submitted jobs stay queued
	results := make([]SubmitResult, 0, len(prep.sets))
	for _, set := range prep.sets {
		desc, err := builder.Build(set)
		if err != nil {
			return results, err
		}

		if id, err := snowflake.NextID(); err == nil {
			desc.SubmitID = id
		} else {
			zap.L().Warn("submission id unavailable", zap.Error(err))
		}

		jobID, err := dispatcher.Submit(ctx, desc, params.Options)
		if err != nil {
			return results, err
		}
		results = append(results, SubmitResult{Set: set.Name, JobID: jobID})
	}

	zap.L().Info("submission pipeline finished",
		zap.Int("sets", len(results)),
		zap.Bool("dry_run", params.DryRun),
		zap.Duration("duration", time.Since(startTime)),
	)
	return results, nil
}
