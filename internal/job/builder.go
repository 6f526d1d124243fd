package job

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	file_util "github.com/hlecates/artifact-ijcar26-luna/internal/util/file"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// Builder turns selected benchmark sets into submittable job descriptors.
// One builder serves a whole run: the resource envelope and command variant
// are fixed up front, only the set varies per call.
type Builder struct {
	WorkRoot     string               // parent directory for per-set working directories
	Resources    model.ResourceConfig // validated resource envelope
	Command      model.CommandSpec    // invocation variant shared by all sets
	MultiArg     bool                 // treat benchmark lines as full argument lists
	JobName      string               // scheduler job name; empty defaults to the set name
	GPUTaskLimit int                  // array throttle applied to GPU jobs
}

// Build lays out the working directory for one set and assembles its
// descriptor. The layout is <WorkRoot>/<set name>/ holding a verbatim copy
// of the set file named "benchmarks"; the directory must not pre-exist so a
// rerun cannot silently clobber earlier task output.
func (b *Builder) Build(set model.BenchmarkSet) (*model.JobDescriptor, error) {
	// Sets are loaded before building; a zero line count means the caller
	// skipped that step and the array directive would be malformed.
	if set.LineCount <= 0 {
		return nil, errs.New(errs.ErrCodeBuild,
			fmt.Sprintf("benchmark set %s has no loaded line count", set.Name))
	}

	// 1. working directory, absolute because sbatch runs chdir'd into it
	workDir, err := filepath.Abs(filepath.Join(b.WorkRoot, set.Name))
	if err != nil {
		return nil, errs.NewBuildError("resolve working directory", err)
	}
	if _, err := os.Stat(workDir); err == nil {
		return nil, errs.New(errs.ErrCodeWorkDirExists,
			fmt.Sprintf("working directory %s already exists", workDir))
	}
	if err := os.MkdirAll(workDir, constants.WorkDirPerm); err != nil {
		return nil, errs.NewBuildError(fmt.Sprintf("create working directory %s", workDir), err)
	}

	// 2. verbatim copy of the set file so the submission is self-contained
	benchPath := filepath.Join(workDir, constants.BenchFileName)
	if err := file_util.CopyFile(set.Path, benchPath); err != nil {
		return nil, errs.NewBuildError(fmt.Sprintf("copy benchmark set %s", set.Name), err)
	}

	// 3. measurement strategy and array throttle follow from the GPU count
	measure := model.MeasureResourceLimited
	throttle := 0
	if b.Resources.NumGPUs > 0 {
		measure = model.MeasureTimeoutWrapped
		throttle = b.GPUTaskLimit
	}

	jobName := b.JobName
	if jobName == "" {
		jobName = set.Name
	}

	desc := &model.JobDescriptor{
		Set:       set,
		WorkDir:   workDir,
		BenchFile: constants.BenchFileName,
		ArraySize: set.LineCount,
		Throttle:  throttle,
		Resources: b.Resources,
		JobName:   jobName,
		Measure:   measure,
		Command:   b.Command,
		MultiArg:  b.MultiArg,
	}

	zap.L().Debug("job descriptor built",
		zap.String("set", set.Name),
		zap.String("work_dir", workDir),
		zap.Int("array_size", desc.ArraySize),
		zap.Int("throttle", desc.Throttle),
	)
	return desc, nil
}
