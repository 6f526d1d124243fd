package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/hlecates/artifact-ijcar26-luna/internal/conf"
	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/job"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

func defaultResources() model.ResourceParams {
	return model.ResourceParams{
		Partition:        constants.DefaultPartition,
		TimeLimitSeconds: constants.DefaultTimeLimitSeconds,
		MemoryLimitMB:    constants.DefaultMemoryMB,
		NumCPUs:          constants.DefaultCPUs,
	}
}

// newTestConfig builds a config whose benchmark dir holds the given sets and
// whose sbatch is a fake that prints one job id per call.
func newTestConfig(t *testing.T, sets map[string][]string) (*viper.Viper, string) {
	t.Helper()

	benchDir := t.TempDir()
	for name, lines := range sets {
		path := filepath.Join(benchDir, constants.BenchmarkFilePrefix+name)
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
			t.Fatalf("write benchmark set %s: %v", name, err)
		}
	}

	sbatch := filepath.Join(t.TempDir(), "sbatch")
	script := "#!/bin/sh\n" +
		"count_file=\"$(dirname \"$0\")/count\"\n" +
		"n=$(cat \"$count_file\" 2>/dev/null || echo 0)\n" +
		"n=$((n + 1))\n" +
		"echo \"$n\" > \"$count_file\"\n" +
		"echo \"Submitted batch job $((1000 + n))\"\n"
	if err := os.WriteFile(sbatch, []byte(script), 0755); err != nil {
		t.Fatalf("write fake sbatch: %v", err)
	}

	cfg := viper.New()
	conf.SetDefaultValues(cfg)
	cfg.Set("benchmarks.dir", benchDir)
	cfg.Set("scheduler.sbatch_path", sbatch)

	return cfg, benchDir
}

func stubSolver(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solver")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho unsat\n"), 0755); err != nil {
		t.Fatalf("write stub solver: %v", err)
	}
	return path
}

func TestSubmitPipeline(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"n1.onnx p1.vnnlib", "n2.onnx p2.vnnlib", "n3.onnx p3.vnnlib"},
		"mnist":  {"m1.onnx q1.vnnlib", "m2.onnx q2.vnnlib"},
	})
	workDir := t.TempDir()

	results, err := Submit(context.Background(), cfg, SubmitParams{
		Selector:  "*",
		Resources: defaultResources(),
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   workDir,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("submitted %d sets, want 2", len(results))
	}
	// catalog order is lexical: acasxu before mnist
	if results[0].Set != "acasxu" || results[1].Set != "mnist" {
		t.Errorf("set order = %s, %s, want acasxu, mnist", results[0].Set, results[1].Set)
	}
	if results[0].JobID != 1001 || results[1].JobID != 1002 {
		t.Errorf("job ids = %d, %d, want 1001, 1002", results[0].JobID, results[1].JobID)
	}

	for _, set := range []string{"acasxu", "mnist"} {
		script := filepath.Join(workDir, set, constants.ScriptFileName)
		if _, err := os.Stat(script); err != nil {
			t.Errorf("missing submission script for %s: %v", set, err)
		}
		copied := filepath.Join(workDir, set, constants.BenchFileName)
		if _, err := os.Stat(copied); err != nil {
			t.Errorf("missing benchmark copy for %s: %v", set, err)
		}
	}
}

func TestSubmitPreflightAbortsBeforeAnySubmission(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"n1.onnx p1.vnnlib"},
		"mnist":  {"m1.onnx q1.vnnlib"},
	})
	workDir := t.TempDir()

	// Collide on the second set only; the first must still not be submitted.
	if err := os.MkdirAll(filepath.Join(workDir, "mnist"), 0755); err != nil {
		t.Fatalf("pre-create work dir: %v", err)
	}

	results, err := Submit(context.Background(), cfg, SubmitParams{
		Selector:  "*",
		Resources: defaultResources(),
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   workDir,
	})
	if err == nil {
		t.Fatal("Submit succeeded despite an existing work directory")
	}
	if !errs.IsErrorCode(err, errs.ErrCodeWorkDirExists) {
		t.Errorf("error code = %d, want %d", errs.GetErrorCode(err), errs.ErrCodeWorkDirExists)
	}
	if len(results) != 0 {
		t.Errorf("submitted %d sets before the preflight failure, want 0", len(results))
	}
	if _, statErr := os.Stat(filepath.Join(workDir, "acasxu")); !os.IsNotExist(statErr) {
		t.Error("first set's work directory was created despite the preflight failure")
	}
}

func TestSubmitDryRunWritesScriptsOnly(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"n1.onnx p1.vnnlib"},
	})
	cfg.Set("scheduler.sbatch_path", "/nonexistent/sbatch")
	workDir := t.TempDir()

	results, err := Submit(context.Background(), cfg, SubmitParams{
		Selector:  "acasxu",
		Resources: defaultResources(),
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   workDir,
		DryRun:    true,
	})
	if err != nil {
		t.Fatalf("dry-run Submit error: %v", err)
	}
	if len(results) != 1 || results[0].JobID != 0 {
		t.Fatalf("dry-run results = %+v, want one entry with job id 0", results)
	}
	if _, err := os.Stat(filepath.Join(workDir, "acasxu", constants.ScriptFileName)); err != nil {
		t.Errorf("dry run did not write the script: %v", err)
	}
}

func TestSubmitUnknownPartition(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"n1.onnx p1.vnnlib"},
	})

	res := defaultResources()
	res.Partition = "no-such-q"
	_, err := Submit(context.Background(), cfg, SubmitParams{
		Selector:  "*",
		Resources: res,
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   t.TempDir(),
	})
	if !errs.IsErrorCode(err, errs.ErrCodeUnknownPartition) {
		t.Errorf("error = %v, want code %d", err, errs.ErrCodeUnknownPartition)
	}
}

func TestSubmitSelectorNoMatch(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"n1.onnx p1.vnnlib"},
	})

	_, err := Submit(context.Background(), cfg, SubmitParams{
		Selector:  "cifar*",
		Resources: defaultResources(),
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   t.TempDir(),
	})
	if !errs.IsErrorCode(err, errs.ErrCodeSelectorNoMatch) {
		t.Errorf("error = %v, want code %d", err, errs.ErrCodeSelectorNoMatch)
	}
}

func TestRunLocalPipeline(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"--flag one", "--flag two"},
	})
	workDir := t.TempDir()

	failed, err := RunLocal(context.Background(), cfg, RunParams{
		Selector:  "acasxu",
		Resources: defaultResources(),
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   workDir,
		MultiArg:  true,
	})
	if err != nil {
		t.Fatalf("RunLocal error: %v", err)
	}
	if failed != 0 {
		t.Errorf("failed tasks = %d, want 0", failed)
	}

	for _, dir := range []string{"slurm-1", "slurm-2"} {
		out := filepath.Join(workDir, "acasxu", dir, constants.RunOutFileName)
		if _, err := os.Stat(out); err != nil {
			t.Errorf("missing task output %s: %v", out, err)
		}
	}
}

func TestRunLocalSingleTask(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"--flag one", "--flag two"},
	})
	workDir := t.TempDir()

	if _, err := RunLocal(context.Background(), cfg, RunParams{
		Selector:  "acasxu",
		Resources: defaultResources(),
		Command:   job.CommandOptions{SolverPath: stubSolver(t)},
		WorkDir:   workDir,
		MultiArg:  true,
		TaskIndex: 2,
	}); err != nil {
		t.Fatalf("RunLocal error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(workDir, "acasxu", "slurm-2", constants.RunOutFileName)); err != nil {
		t.Errorf("selected task did not run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "acasxu", "slurm-1")); !os.IsNotExist(err) {
		t.Error("unselected task ran")
	}
}

func TestRunLocalRejectsFramework(t *testing.T) {
	cfg, _ := newTestConfig(t, map[string][]string{
		"acasxu": {"n1.onnx p1.vnnlib"},
	})

	fwDir := t.TempDir()
	entry := filepath.Join(fwDir, constants.FrameworkEntryRel)
	if err := os.MkdirAll(filepath.Dir(entry), 0755); err != nil {
		t.Fatalf("mkdir framework entry dir: %v", err)
	}
	if err := os.WriteFile(entry, []byte("print('ok')\n"), 0644); err != nil {
		t.Fatalf("write framework entry: %v", err)
	}
	cfg.Set("framework.runtime", "sh") // present on any test host

	_, err := RunLocal(context.Background(), cfg, RunParams{
		Selector:  "acasxu",
		Resources: defaultResources(),
		Command:   job.CommandOptions{FrameworkDir: fwDir},
		WorkDir:   t.TempDir(),
	})
	if err == nil {
		t.Fatal("RunLocal accepted framework mode")
	}
	if !errs.IsErrorCode(err, errs.ErrCodeLocalRun) {
		t.Errorf("error code = %d, want %d", errs.GetErrorCode(err), errs.ErrCodeLocalRun)
	}
}
