package policy

import (
	"fmt"
	"strings"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// DefaultPartitions is the built-in partition table. A partitions section in
// the config file replaces it wholesale.
var DefaultPartitions = []model.Partition{
	{Name: "cpu-q", MaxMemoryMB: 64000, MaxCPUs: 64},
	{Name: "bigmem-q", MaxMemoryMB: 512000, MaxCPUs: 64},
	{Name: "gpu-a100-q", MaxMemoryMB: 128000, MaxCPUs: 64, GPUs: 4},
	{Name: "gpu-v100-q", MaxMemoryMB: 96000, MaxCPUs: 48, GPUs: 2},
}

// Policy validates resource requests against partition ceilings and the
// global time bound.
type Policy struct {
	partitions     map[string]model.Partition
	names          []string // table order, for diagnostics
	maxTimeSeconds int
}

// New builds a policy. Empty partitions fall back to DefaultPartitions, a
// non-positive maxTimeSeconds falls back to the built-in bound.
func New(partitions []model.Partition, maxTimeSeconds int) *Policy {
	if len(partitions) == 0 {
		partitions = DefaultPartitions
	}
	if maxTimeSeconds <= 0 {
		maxTimeSeconds = constants.MaxTimeLimitSeconds
	}

	p := &Policy{
		partitions:     make(map[string]model.Partition, len(partitions)),
		maxTimeSeconds: maxTimeSeconds,
	}
	for _, part := range partitions {
		p.partitions[part.Name] = part
		p.names = append(p.names, part.Name)
	}
	return p
}

// MaxTimeSeconds returns the global time-limit ceiling.
func (p *Policy) MaxTimeSeconds() int {
	return p.maxTimeSeconds
}

// Partitions returns the known partition names in table order.
func (p *Policy) Partitions() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Validate checks params in a fixed order, aborting on the first failure,
// and returns the normalized resource envelope. A zero GPU count on a
// GPU-capable partition normalizes to 1.
func (p *Policy) Validate(params model.ResourceParams) (model.ResourceConfig, error) {
	var zero model.ResourceConfig

	// 1. partition must be known
	part, ok := p.partitions[params.Partition]
	if !ok {
		return zero, errs.New(errs.ErrCodeUnknownPartition,
			fmt.Sprintf("unknown partition %q (known: %s)", params.Partition, strings.Join(p.names, ", ")))
	}

	// 2. time limit against the global bound
	if params.TimeLimitSeconds <= 0 || params.TimeLimitSeconds > p.maxTimeSeconds {
		return zero, errs.New(errs.ErrCodeTimeLimit,
			fmt.Sprintf("time limit %ds outside 1-%ds", params.TimeLimitSeconds, p.maxTimeSeconds))
	}

	// 3. memory against the partition ceiling
	if params.MemoryLimitMB <= 0 || params.MemoryLimitMB > part.MaxMemoryMB {
		return zero, errs.New(errs.ErrCodeMemoryLimit,
			fmt.Sprintf("memory limit %dMB outside 1-%dMB on partition %q",
				params.MemoryLimitMB, part.MaxMemoryMB, part.Name))
	}

	// 4. cpu count against the partition ceiling
	if params.NumCPUs < 1 || params.NumCPUs > part.MaxCPUs {
		return zero, errs.New(errs.ErrCodeCPUCount,
			fmt.Sprintf("cpu count %d outside 1-%d on partition %q",
				params.NumCPUs, part.MaxCPUs, part.Name))
	}

	// 5. gpu count; requesting GPUs needs a GPU-capable partition
	if params.NumGPUs < 0 {
		return zero, errs.New(errs.ErrCodeGPUCount,
			fmt.Sprintf("gpu count %d is negative", params.NumGPUs))
	}
	gpus := params.NumGPUs
	if part.GPUs == 0 && gpus > 0 {
		return zero, errs.New(errs.ErrCodeGPUCount,
			fmt.Sprintf("partition %q has no GPUs", part.Name))
	}
	if part.GPUs > 0 && gpus == 0 {
		gpus = 1
	}

	return model.ResourceConfig{
		TimeLimitSeconds: params.TimeLimitSeconds,
		UseWallTime:      params.UseWallTime,
		MemoryLimitMB:    params.MemoryLimitMB,
		NumCPUs:          params.NumCPUs,
		NumGPUs:          gpus,
		Partition:        part.Name,
	}, nil
}
