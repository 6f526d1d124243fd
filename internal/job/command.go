package job

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// CommandOptions carries the raw command-line choices that pick the
// invocation variant for a run.
type CommandOptions struct {
	SolverPath   string   // direct mode: solver binary to invoke per task
	FrameworkDir string   // framework mode: checkout root; mutually exclusive with SolverPath
	EntryRel     string   // entry script path relative to FrameworkDir
	Runtime      string   // interpreter for the entry script
	NumGPUs      int      // selects the framework compute device
	ExtraArgs    []string // user-supplied trailing options, appended verbatim
}

// NewCommandSpec validates the options and assembles the command variant.
// A framework directory selects framework mode, otherwise the solver path is
// used directly; exactly one of the two must be given. Paths are made
// absolute because the task script runs chdir'd into the set's working
// directory.
func NewCommandSpec(opts CommandOptions) (model.CommandSpec, error) {
	var zero model.CommandSpec

	if opts.FrameworkDir != "" && opts.SolverPath != "" {
		return zero, errs.New(errs.ErrCodeBuild, "--framework and --solver are mutually exclusive")
	}

	if opts.FrameworkDir != "" {
		fw, err := NewFrameworkSpec(opts.FrameworkDir, opts.EntryRel, opts.Runtime, opts.NumGPUs)
		if err != nil {
			return zero, err
		}
		return model.CommandSpec{
			Kind:      model.CommandFramework,
			Framework: fw,
			ExtraArgs: opts.ExtraArgs,
		}, nil
	}

	if opts.SolverPath == "" {
		return zero, errs.New(errs.ErrCodeSolverMissing, "no solver given (need --solver or --framework)")
	}
	solver, err := filepath.Abs(opts.SolverPath)
	if err != nil {
		return zero, errs.NewBuildError("resolve solver path", err)
	}
	fi, err := os.Stat(solver)
	if err != nil {
		return zero, errs.New(errs.ErrCodeSolverMissing, fmt.Sprintf("solver %s does not exist", solver))
	}
	if fi.IsDir() || fi.Mode()&0111 == 0 {
		return zero, errs.New(errs.ErrCodeSolverMissing, fmt.Sprintf("solver %s is not executable", solver))
	}

	return model.CommandSpec{
		Kind:       model.CommandDirect,
		SolverPath: solver,
		ExtraArgs:  opts.ExtraArgs,
	}, nil
}
