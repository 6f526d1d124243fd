package job

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// frameworkConfig mirrors the verifier's YAML configuration layout. Per-task
// values are written as shell variable references and expanded by the task
// script's heredoc, so one rendered document serves every array index.
type frameworkConfig struct {
	General struct {
		Device   string `yaml:"device"`
		RootPath string `yaml:"root_path"`
	} `yaml:"general"`
	Model struct {
		OnnxPath string `yaml:"onnx_path"`
	} `yaml:"model"`
	Specification struct {
		VnnlibPath string `yaml:"vnnlib_path"`
	} `yaml:"specification"`
	Solver struct {
		BatchSize       int    `yaml:"batch_size"`
		BoundPropMethod string `yaml:"bound_prop_method"`
	} `yaml:"solver"`
}

// Shell variables the task script defines before expanding the document.
const (
	varModelFile = "$MODEL_FILE"
	varPropFile  = "$PROP_FILE"
	varRootDir   = "$ROOT_DIR"
)

// RenderFrameworkConfig produces the per-task configuration document for the
// given compute device.
func RenderFrameworkConfig(device string) ([]byte, error) {
	var doc frameworkConfig
	doc.General.Device = device
	doc.General.RootPath = varRootDir
	doc.Model.OnnxPath = varModelFile
	doc.Specification.VnnlibPath = varPropFile
	doc.Solver.BatchSize = constants.FrameworkBatchSize
	doc.Solver.BoundPropMethod = constants.FrameworkBoundMethod
	return yaml.Marshal(&doc)
}

// NewFrameworkSpec validates the framework layout and renders its per-task
// configuration. The directory must exist, the entry script must live inside
// it, and the runtime must resolve to an executable on PATH.
func NewFrameworkSpec(dir, entryRel, runtime string, numGPUs int) (*model.FrameworkSpec, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.NewBuildError("resolve framework directory", err)
	}
	fi, err := os.Stat(absDir)
	if err != nil || !fi.IsDir() {
		return nil, errs.New(errs.ErrCodeFrameworkMissing,
			fmt.Sprintf("framework directory %s does not exist", absDir))
	}

	entry := filepath.Join(absDir, entryRel)
	if _, err := os.Stat(entry); err != nil {
		return nil, errs.New(errs.ErrCodeFrameworkMissing,
			fmt.Sprintf("framework entry script %s does not exist", entry))
	}

	if _, err := exec.LookPath(runtime); err != nil {
		return nil, errs.New(errs.ErrCodeRuntimeMissing,
			fmt.Sprintf("runtime binary %q not found", runtime))
	}

	device := constants.DeviceCPU
	if numGPUs > 0 {
		device = constants.DeviceGPU
	}

	doc, err := RenderFrameworkConfig(device)
	if err != nil {
		return nil, errs.NewBuildError("render framework config", err)
	}

	return &model.FrameworkSpec{
		Dir:       absDir,
		Entry:     entry,
		Runtime:   runtime,
		Device:    device,
		ConfigDoc: doc,
	}, nil
}
