package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
)

// newLocalDescriptor lays out a working directory with a benchmarks file and
// an executable stub standing in for the solver.
func newLocalDescriptor(t *testing.T, taskLines []string, stubBody string) *model.JobDescriptor {
	t.Helper()
	workDir := t.TempDir()

	content := strings.Join(taskLines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(workDir, constants.BenchFileName), []byte(content), 0644); err != nil {
		t.Fatalf("write benchmarks file: %v", err)
	}

	solver := filepath.Join(workDir, "solver")
	if err := os.WriteFile(solver, []byte("#!/bin/sh\n"+stubBody), 0755); err != nil {
		t.Fatalf("write solver stub: %v", err)
	}

	return &model.JobDescriptor{
		Set:       model.BenchmarkSet{Ordinal: 1, Name: "acasxu", LineCount: len(taskLines)},
		WorkDir:   workDir,
		BenchFile: constants.BenchFileName,
		ArraySize: len(taskLines),
		Resources: model.ResourceConfig{
			TimeLimitSeconds: 10,
			MemoryLimitMB:    4000,
			NumCPUs:          1,
			Partition:        "cpu-q",
		},
		JobName: "acasxu",
		Measure: model.MeasureResourceLimited,
		Command: model.CommandSpec{Kind: model.CommandDirect, SolverPath: solver},
	}
}

func TestRunSetLayout(t *testing.T) {
	desc := newLocalDescriptor(t, []string{
		"nets/n1.onnx props/p1.vnnlib",
		"nets/n2.onnx props/p2.vnnlib",
	}, "echo \"Result: unsat\"\n")

	failed, err := NewLocalRunner().RunSet(context.Background(), desc)
	if err != nil {
		t.Fatalf("RunSet error: %v", err)
	}
	if failed != 0 {
		t.Errorf("failed tasks = %d, want 0", failed)
	}

	// Task directories nest by model then property base name.
	taskDir := filepath.Join(desc.WorkDir, "n1", "p1")
	out, err := os.ReadFile(filepath.Join(taskDir, constants.RunOutFileName))
	if err != nil {
		t.Fatalf("read run.out: %v", err)
	}
	if !strings.Contains(string(out), "Result: unsat") {
		t.Errorf("run.out = %q, want solver output", out)
	}

	report, err := os.ReadFile(filepath.Join(taskDir, constants.ReportFileName))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"[local] real:", "[local] status: ok"} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestRunSetMultiArg(t *testing.T) {
	desc := newLocalDescriptor(t, []string{"--prove nets/n1.onnx"}, "echo done\n")
	desc.MultiArg = true

	failed, err := NewLocalRunner().RunSet(context.Background(), desc)
	if err != nil {
		t.Fatalf("RunSet error: %v", err)
	}
	if failed != 0 {
		t.Errorf("failed tasks = %d, want 0", failed)
	}
	if _, err := os.Stat(filepath.Join(desc.WorkDir, "slurm-1", constants.RunOutFileName)); err != nil {
		t.Errorf("multi-argument task dir missing: %v", err)
	}
}

func TestRunSetTimeout(t *testing.T) {
	desc := newLocalDescriptor(t, []string{"nets/n1.onnx props/p1.vnnlib"}, "sleep 5\n")
	desc.Resources.TimeLimitSeconds = 1

	failed, err := NewLocalRunner().RunSet(context.Background(), desc)
	if err != nil {
		t.Fatalf("RunSet error: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed tasks = %d, want 1", failed)
	}

	report, err := os.ReadFile(filepath.Join(desc.WorkDir, "n1", "p1", constants.ReportFileName))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), "status: out of time") {
		t.Errorf("report = %q, want out-of-time status", report)
	}
}

func TestRunSetBadFieldCount(t *testing.T) {
	desc := newLocalDescriptor(t, []string{"only-one-field"}, "echo done\n")

	failed, err := NewLocalRunner().RunSet(context.Background(), desc)
	if err != nil {
		t.Fatalf("RunSet error: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed tasks = %d, want 1", failed)
	}
}

func TestRunTaskIndex(t *testing.T) {
	desc := newLocalDescriptor(t, []string{
		"nets/n1.onnx props/p1.vnnlib",
		"nets/n2.onnx props/p2.vnnlib",
	}, "echo done\n")
	r := NewLocalRunner()

	if err := r.RunTask(context.Background(), desc, 2); err != nil {
		t.Fatalf("RunTask error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(desc.WorkDir, "n2", "p2", constants.RunOutFileName)); err != nil {
		t.Errorf("task 2 output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(desc.WorkDir, "n1")); err == nil {
		t.Error("task 1 ran, want only task 2")
	}

	if err := r.RunTask(context.Background(), desc, 3); err == nil {
		t.Error("RunTask succeeded for an out-of-range index, want error")
	}
}

func TestRunRejectsFrameworkMode(t *testing.T) {
	desc := newLocalDescriptor(t, []string{"nets/n1.onnx props/p1.vnnlib"}, "echo done\n")
	desc.Command = model.CommandSpec{
		Kind:      model.CommandFramework,
		Framework: &model.FrameworkSpec{Dir: "/opt/abcrown"},
	}

	if _, err := NewLocalRunner().RunSet(context.Background(), desc); err == nil {
		t.Error("RunSet accepted a framework descriptor, want error")
	}
	if err := NewLocalRunner().RunTask(context.Background(), desc, 1); err == nil {
		t.Error("RunTask accepted a framework descriptor, want error")
	}
}
