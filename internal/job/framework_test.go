package job

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
)

func TestRenderFrameworkConfig(t *testing.T) {
	doc, err := RenderFrameworkConfig(constants.DeviceGPU)
	if err != nil {
		t.Fatalf("RenderFrameworkConfig error: %v", err)
	}

	var got frameworkConfig
	if err := yaml.Unmarshal(doc, &got); err != nil {
		t.Fatalf("rendered config is not valid YAML: %v", err)
	}

	if got.General.Device != constants.DeviceGPU {
		t.Errorf("general.device = %q, want %q", got.General.Device, constants.DeviceGPU)
	}
	if got.General.RootPath != "$ROOT_DIR" {
		t.Errorf("general.root_path = %q, want %q", got.General.RootPath, "$ROOT_DIR")
	}
	if got.Model.OnnxPath != "$MODEL_FILE" {
		t.Errorf("model.onnx_path = %q, want %q", got.Model.OnnxPath, "$MODEL_FILE")
	}
	if got.Specification.VnnlibPath != "$PROP_FILE" {
		t.Errorf("specification.vnnlib_path = %q, want %q", got.Specification.VnnlibPath, "$PROP_FILE")
	}
	if got.Solver.BatchSize != constants.FrameworkBatchSize {
		t.Errorf("solver.batch_size = %d, want %d", got.Solver.BatchSize, constants.FrameworkBatchSize)
	}
	if got.Solver.BoundPropMethod != constants.FrameworkBoundMethod {
		t.Errorf("solver.bound_prop_method = %q, want %q", got.Solver.BoundPropMethod, constants.FrameworkBoundMethod)
	}
}

func TestRenderFrameworkConfigDeviceVaries(t *testing.T) {
	for _, device := range []string{constants.DeviceCPU, constants.DeviceGPU} {
		doc, err := RenderFrameworkConfig(device)
		if err != nil {
			t.Fatalf("RenderFrameworkConfig(%q) error: %v", device, err)
		}
		var got frameworkConfig
		if err := yaml.Unmarshal(doc, &got); err != nil {
			t.Fatalf("unmarshal rendered config: %v", err)
		}
		if got.General.Device != device {
			t.Errorf("general.device = %q, want %q", got.General.Device, device)
		}
	}
}
