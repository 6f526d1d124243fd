package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// Dispatcher writes the rendered script into the set's working directory and
// hands it to the scheduler's submission command.
type Dispatcher struct {
	SbatchPath string
	Tools      MeasureTools
	DryRun     bool // render and write the script but skip the submission call
}

var submittedRe = regexp.MustCompile(`Submitted batch job (\d+)`)

// Submit renders desc into <workdir>/job.sbatch and runs the submission
// command from inside the working directory. It returns the scheduler's job
// ID. Submission failures are not retried.
func (d *Dispatcher) Submit(ctx context.Context, desc *model.JobDescriptor, opts model.SubmitOptions) (int64, error) {
	script := RenderScript(desc, d.Tools)
	scriptPath := filepath.Join(desc.WorkDir, constants.ScriptFileName)
	if err := os.WriteFile(scriptPath, []byte(script), constants.ScriptFilePerm); err != nil {
		return 0, errs.NewDispatchError(fmt.Sprintf("write %s", scriptPath), err)
	}

	args := submitArgs(desc, opts)
	if d.DryRun {
		zap.L().Info("dry run, submission skipped",
			zap.String("set", desc.Set.Name),
			zap.String("script", scriptPath),
			zap.Strings("sbatch_args", args),
		)
		return 0, nil
	}

	cmd := exec.CommandContext(ctx, d.SbatchPath, args...)
	cmd.Dir = desc.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, errs.Wrap(errs.ErrCodeSubmitFailed,
			fmt.Sprintf("sbatch failed for set %s: %s", desc.Set.Name, strings.TrimSpace(stderr.String())), err)
	}

	jobID, err := parseJobID(stdout.String())
	if err != nil {
		return 0, err
	}
	zap.L().Info("batch job submitted",
		zap.String("set", desc.Set.Name),
		zap.Int64("job_id", jobID),
		zap.Int("array_size", desc.ArraySize),
		zap.String("partition", desc.Resources.Partition),
	)
	return jobID, nil
}

// submitArgs builds the per-submission options passed on the sbatch command
// line rather than baked into the script.
func submitArgs(desc *model.JobDescriptor, opts model.SubmitOptions) []string {
	args := []string{fmt.Sprintf("--job-name=%s", desc.JobName)}
	if opts.ExcludeNodes != "" {
		args = append(args, fmt.Sprintf("--exclude=%s", opts.ExcludeNodes))
	}
	if opts.MailUser != "" {
		args = append(args,
			fmt.Sprintf("--mail-user=%s", opts.MailUser),
			fmt.Sprintf("--mail-type=%s", constants.MailType))
	}
	if desc.SubmitID != 0 {
		args = append(args, fmt.Sprintf("--comment=submit-%d", desc.SubmitID))
	}
	return append(args, constants.ScriptFileName)
}

// parseJobID extracts the job ID from the submission command's stdout.
func parseJobID(out string) (int64, error) {
	m := submittedRe.FindStringSubmatch(out)
	if m == nil {
		return 0, errs.New(errs.ErrCodeSubmitFailed,
			fmt.Sprintf("cannot parse job id from sbatch output %q", strings.TrimSpace(out)))
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeSubmitFailed, "parse job id", err)
	}
	return id, nil
}
