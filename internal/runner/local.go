package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/catalog"
	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/job"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// LocalRunner executes a built descriptor's tasks sequentially in-process,
// producing the same per-task directory layout and report markers the
// cluster script does. Meant for smoke-testing a benchmark set on a
// workstation before spending cluster time; results compile with the same
// tooling either way. Direct-binary mode only; framework sweeps need the
// cluster's environment.
type LocalRunner struct{}

func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// RunTask runs the single 1-based task of the set.
func (r *LocalRunner) RunTask(ctx context.Context, desc *model.JobDescriptor, index int) error {
	lines, err := r.taskLines(desc)
	if err != nil {
		return err
	}
	if index < 1 || index > len(lines) {
		return errs.New(errs.ErrCodeLocalRun,
			fmt.Sprintf("task index %d out of range [1..%d] for set %s", index, len(lines), desc.Set.Name))
	}
	return r.runLine(ctx, desc, index, lines[index-1])
}

// RunSet runs every task of the set, one at a time. Individual task failures
// are recorded in the task's report and do not stop the sweep; the returned
// count says how many tasks failed. An error means the set itself could not
// be run.
func (r *LocalRunner) RunSet(ctx context.Context, desc *model.JobDescriptor) (int, error) {
	lines, err := r.taskLines(desc)
	if err != nil {
		return 0, err
	}

	failed := 0
	for i, line := range lines {
		index := i + 1
		if err := r.runLine(ctx, desc, index, line); err != nil {
			if ctx.Err() != nil {
				return failed, errs.Wrap(errs.ErrCodeLocalRun, "local run interrupted", ctx.Err())
			}
			failed++
			zap.L().Warn("task failed",
				zap.String("set", desc.Set.Name),
				zap.Int("task", index),
				zap.Error(err),
			)
		}
	}

	zap.L().Info("local run finished",
		zap.String("set", desc.Set.Name),
		zap.Int("tasks", len(lines)),
		zap.Int("failed", failed),
	)
	return failed, nil
}

func (r *LocalRunner) taskLines(desc *model.JobDescriptor) ([]string, error) {
	if desc.Command.Kind == model.CommandFramework {
		return nil, errs.New(errs.ErrCodeLocalRun,
			"framework mode is not supported locally; submit to the cluster instead")
	}
	return catalog.ReadTaskLines(filepath.Join(desc.WorkDir, desc.BenchFile))
}

// runLine mirrors one array task: resolve the line's fields, create the task
// directory, run the solver under the time limit, write run.out and the
// report.
func (r *LocalRunner) runLine(ctx context.Context, desc *model.JobDescriptor, index int, line string) error {
	fields := strings.Fields(line)

	var taskDir string
	var passedArgs []string
	if desc.MultiArg {
		for _, field := range fields {
			resolved, err := job.ResolveInput(field)
			if err != nil {
				return err
			}
			passedArgs = append(passedArgs, resolved)
		}
		taskDir = fmt.Sprintf("%s%d", constants.TaskDirPrefix, index)
	} else {
		if len(fields) != 2 {
			return errs.New(errs.ErrCodeLocalRun,
				fmt.Sprintf("task %d: want 2 fields (model property), got %d", index, len(fields)))
		}
		modelFile, err := job.ResolveInput(fields[0])
		if err != nil {
			return err
		}
		propFile, err := job.ResolveInput(fields[1])
		if err != nil {
			return err
		}
		passedArgs = []string{modelFile, propFile}
		taskDir = filepath.Join(stripExt(modelFile), stripExt(propFile))
	}

	absTaskDir := filepath.Join(desc.WorkDir, taskDir)
	if err := os.MkdirAll(absTaskDir, constants.WorkDirPerm); err != nil {
		return errs.Wrap(errs.ErrCodeLocalRun, fmt.Sprintf("create task dir %s", absTaskDir), err)
	}

	args := append([]string{desc.Command.SolverPath}, passedArgs...)
	args = append(args, desc.Command.ExtraArgs...)

	limit := time.Duration(desc.Resources.TimeLimitSeconds) * time.Second
	tctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	out, err := os.Create(filepath.Join(absTaskDir, constants.RunOutFileName))
	if err != nil {
		return errs.Wrap(errs.ErrCodeLocalRun, "create run.out", err)
	}
	defer out.Close()

	cmd := exec.CommandContext(tctx, args[0], args[1:]...)
	cmd.Dir = desc.WorkDir
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	status := "ok"
	switch {
	case tctx.Err() == context.DeadlineExceeded:
		status = "out of time"
	case runErr != nil:
		status = runErr.Error()
	}

	if err := writeReport(filepath.Join(absTaskDir, constants.ReportFileName), args, elapsed, status); err != nil {
		return err
	}
	if status != "ok" {
		return errs.New(errs.ErrCodeLocalRun, fmt.Sprintf("task %d: %s", index, status))
	}
	return nil
}

// writeReport emits the timing report with the same shape as the cluster
// wrapper's, under a local marker, so result compilation reads both.
func writeReport(path string, args []string, elapsed time.Duration, status string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s command: %s\n", constants.LocalReportMarker, strings.Join(args, " "))
	fmt.Fprintf(&sb, "%s real: %.2f seconds\n", constants.LocalReportMarker, elapsed.Seconds())
	fmt.Fprintf(&sb, "%s status: %s\n", constants.LocalReportMarker, status)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return errs.Wrap(errs.ErrCodeLocalRun, "write task report", err)
	}
	return nil
}

// stripExt drops the directory and extension, leaving the base name used for
// task directory nesting.
func stripExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
