package service

import (
	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/results"
)

// CompileResults walks finished working directories under workRoot and writes
// the per-task and per-set CSV files into outDir. With no explicit set names
// it compiles every run found under workRoot; an empty outDir defaults to
// workRoot itself.
func CompileResults(workRoot, outDir string, setNames []string) error {
	compiler := results.NewCompiler(workRoot)

	// 1. decide which runs to compile
	if len(setNames) == 0 {
		var err error
		setNames, err = compiler.DiscoverRuns()
		if err != nil {
			return err
		}
	}

	// 2. parse every task directory
	taskResults, err := compiler.Compile(setNames)
	if err != nil {
		return err
	}

	// 3. write the CSV pair
	if outDir == "" {
		outDir = workRoot
	}
	if err := results.WriteFiles(outDir, taskResults, results.Summarize(taskResults)); err != nil {
		return err
	}

	zap.L().Info("results compiled",
		zap.Int("sets", len(setNames)),
		zap.Int("tasks", len(taskResults)),
		zap.String("out_dir", outDir),
	)
	return nil
}
