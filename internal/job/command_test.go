package job

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// newSolverBinary drops an executable stub into a temp dir.
func newSolverBinary(t *testing.T, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "luna")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode); err != nil {
		t.Fatalf("write solver stub: %v", err)
	}
	return path
}

// newFrameworkDir lays out a minimal framework checkout.
func newFrameworkDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entry := filepath.Join(dir, constants.FrameworkEntryRel)
	if err := os.MkdirAll(filepath.Dir(entry), 0755); err != nil {
		t.Fatalf("create entry dir: %v", err)
	}
	if err := os.WriteFile(entry, []byte("# entry\n"), 0644); err != nil {
		t.Fatalf("write entry script: %v", err)
	}
	return dir
}

func TestNewCommandSpecDirect(t *testing.T) {
	solver := newSolverBinary(t, 0755)

	spec, err := NewCommandSpec(CommandOptions{
		SolverPath: solver,
		ExtraArgs:  []string{"--verbose"},
	})
	if err != nil {
		t.Fatalf("NewCommandSpec error: %v", err)
	}
	if spec.Kind != model.CommandDirect {
		t.Errorf("Kind = %q, want %q", spec.Kind, model.CommandDirect)
	}
	if !filepath.IsAbs(spec.SolverPath) {
		t.Errorf("SolverPath = %q, want absolute", spec.SolverPath)
	}
	if spec.Framework != nil {
		t.Errorf("Framework = %+v, want nil in direct mode", spec.Framework)
	}
	if len(spec.ExtraArgs) != 1 || spec.ExtraArgs[0] != "--verbose" {
		t.Errorf("ExtraArgs = %v, want [--verbose]", spec.ExtraArgs)
	}
}

func TestNewCommandSpecFramework(t *testing.T) {
	dir := newFrameworkDir(t)

	tests := []struct {
		name       string
		numGPUs    int
		wantDevice string
	}{
		{"cpu device without gpus", 0, constants.DeviceCPU},
		{"cuda device with gpus", 2, constants.DeviceGPU},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewCommandSpec(CommandOptions{
				FrameworkDir: dir,
				EntryRel:     constants.FrameworkEntryRel,
				Runtime:      "sh",
				NumGPUs:      tt.numGPUs,
			})
			if err != nil {
				t.Fatalf("NewCommandSpec error: %v", err)
			}
			if spec.Kind != model.CommandFramework {
				t.Fatalf("Kind = %q, want %q", spec.Kind, model.CommandFramework)
			}
			if spec.Framework.Device != tt.wantDevice {
				t.Errorf("Device = %q, want %q", spec.Framework.Device, tt.wantDevice)
			}
			if !strings.HasSuffix(spec.Framework.Entry, constants.FrameworkEntryRel) {
				t.Errorf("Entry = %q, want suffix %q", spec.Framework.Entry, constants.FrameworkEntryRel)
			}
			if len(spec.Framework.ConfigDoc) == 0 {
				t.Error("ConfigDoc is empty")
			}
		})
	}
}

func TestNewCommandSpecErrors(t *testing.T) {
	solver := newSolverBinary(t, 0755)
	plain := newSolverBinary(t, 0644)
	frameworkDir := newFrameworkDir(t)

	tests := []struct {
		name     string
		opts     CommandOptions
		wantCode errs.ErrorCode
		wantMsg  string
	}{
		{
			name:     "solver and framework together",
			opts:     CommandOptions{SolverPath: solver, FrameworkDir: frameworkDir, EntryRel: constants.FrameworkEntryRel, Runtime: "sh"},
			wantCode: errs.ErrCodeBuild,
			wantMsg:  "mutually exclusive",
		},
		{
			name:     "neither solver nor framework",
			opts:     CommandOptions{},
			wantCode: errs.ErrCodeSolverMissing,
			wantMsg:  "no solver given",
		},
		{
			name:     "solver does not exist",
			opts:     CommandOptions{SolverPath: filepath.Join(t.TempDir(), "absent")},
			wantCode: errs.ErrCodeSolverMissing,
			wantMsg:  "does not exist",
		},
		{
			name:     "solver not executable",
			opts:     CommandOptions{SolverPath: plain},
			wantCode: errs.ErrCodeSolverMissing,
			wantMsg:  "not executable",
		},
		{
			name:     "framework dir missing",
			opts:     CommandOptions{FrameworkDir: filepath.Join(t.TempDir(), "absent"), EntryRel: constants.FrameworkEntryRel, Runtime: "sh"},
			wantCode: errs.ErrCodeFrameworkMissing,
			wantMsg:  "framework directory",
		},
		{
			name:     "entry script missing",
			opts:     CommandOptions{FrameworkDir: t.TempDir(), EntryRel: constants.FrameworkEntryRel, Runtime: "sh"},
			wantCode: errs.ErrCodeFrameworkMissing,
			wantMsg:  "entry script",
		},
		{
			name:     "runtime not on PATH",
			opts:     CommandOptions{FrameworkDir: frameworkDir, EntryRel: constants.FrameworkEntryRel, Runtime: "no-such-runtime-binary"},
			wantCode: errs.ErrCodeRuntimeMissing,
			wantMsg:  "runtime binary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCommandSpec(tt.opts)
			if err == nil {
				t.Fatal("NewCommandSpec succeeded, want error")
			}
			if !errs.IsErrorCode(err, tt.wantCode) {
				t.Errorf("error code = %d, want %d (err: %v)", errs.GetErrorCode(err), tt.wantCode, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
