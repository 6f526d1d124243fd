package results

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/constants"
	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// Report and solver-output markers. Task directories produced on the cluster
// carry runlim reports; local runs carry the same shape under a local marker.
var (
	argsRe   = regexp.MustCompile(`(?m)^c args:\s+(.+)$`)
	resultRe = regexp.MustCompile(`(?m)^Result:\s*(\w+)`)
	timeRe   = regexp.MustCompile(`(?m)^Time:\s*([\d.]+)`)
	realRe   = regexp.MustCompile(`\[(?:runlim|local)\]\s*real:\s*([\d.]+)\s*seconds`)
	statusRe = regexp.MustCompile(`\[(?:runlim|local)\]\s*status:\s*(.+)`)

	slurmDirRe = regexp.MustCompile(`^slurm-(\d+)$`)
)

// Compiler walks finished working directories and turns task output into
// result rows. It never inspects the scheduler; everything is read from the
// filesystem layout the task script produced.
type Compiler struct {
	Root string // directory holding the per-set working directories
}

func NewCompiler(root string) *Compiler {
	return &Compiler{Root: root}
}

// DiscoverRuns lists the set names under Root that look like completed or
// in-progress runs, identified by the benchmarks copy in their directory.
func (c *Compiler) DiscoverRuns() ([]string, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeResults, fmt.Sprintf("read run directory %s", c.Root), err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.Root, entry.Name(), constants.BenchFileName)); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, errs.New(errs.ErrCodeResults, fmt.Sprintf("no runs found under %s", c.Root))
	}
	return names, nil
}

// Compile parses every task directory of the named sets, in order.
func (c *Compiler) Compile(setNames []string) ([]model.TaskResult, error) {
	var all []model.TaskResult
	for _, name := range setNames {
		rs, err := c.compileSet(name)
		if err != nil {
			return nil, err
		}
		all = append(all, rs...)
	}
	return all, nil
}

// compileSet collects task directories below one set's working directory. A
// task directory is any directory holding a run.out; everything else
// (benchmarks copy, job script, scheduler logs) is skipped.
func (c *Compiler) compileSet(setName string) ([]model.TaskResult, error) {
	setDir := filepath.Join(c.Root, setName)

	var taskDirs []string
	err := filepath.WalkDir(setDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == constants.RunOutFileName {
			rel, err := filepath.Rel(setDir, filepath.Dir(path))
			if err != nil {
				return err
			}
			taskDirs = append(taskDirs, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeResults, fmt.Sprintf("walk %s", setDir), err)
	}
	sortTaskDirs(taskDirs)

	results := make([]model.TaskResult, 0, len(taskDirs))
	for _, taskDir := range taskDirs {
		results = append(results, c.compileTask(setName, setDir, taskDir))
	}
	zap.L().Debug("set compiled",
		zap.String("set", setName),
		zap.Int("tasks", len(results)),
	)
	return results, nil
}

// compileTask merges one task's solver output and measurement report into a
// row. Parse failures degrade to an error status rather than aborting the
// compilation; a sweep with one corrupt task is still worth summarizing.
func (c *Compiler) compileTask(setName, setDir, taskDir string) model.TaskResult {
	res := model.TaskResult{
		Set:     setName,
		TaskDir: taskDir,
		Status:  model.StatusError,
	}

	runOut, err := os.ReadFile(filepath.Join(setDir, taskDir, constants.RunOutFileName))
	if err != nil {
		return res
	}
	content := string(runOut)

	res.Model, res.Property = parseArgsLine(content)

	if m := timeRe.FindStringSubmatch(content); m != nil {
		res.Seconds, _ = strconv.ParseFloat(m[1], 64)
	}

	if report, err := os.ReadFile(filepath.Join(setDir, taskDir, constants.ReportFileName)); err == nil {
		seconds, ok, timedOut := parseReport(string(report))
		if ok {
			res.Seconds = seconds
		}
		res.TimedOut = timedOut
	}

	switch {
	case res.TimedOut:
		res.Status = model.StatusTimeout
	default:
		if m := resultRe.FindStringSubmatch(content); m != nil {
			switch strings.ToLower(m[1]) {
			case "unsat":
				res.Status = model.StatusVerified
			case "sat":
				res.Status = model.StatusFalsified
			default:
				res.Status = model.StatusUnknown
			}
		}
	}
	return res
}

// parseArgsLine extracts the model and property base names from the solver's
// argument echo line.
func parseArgsLine(content string) (modelFile, propFile string) {
	m := argsRe.FindStringSubmatch(content)
	if m == nil {
		return "", ""
	}
	for _, arg := range strings.Fields(m[1]) {
		switch {
		case strings.HasSuffix(arg, ".onnx"):
			modelFile = filepath.Base(arg)
		case strings.HasSuffix(arg, ".vnnlib"):
			propFile = filepath.Base(arg)
		}
	}
	return modelFile, propFile
}

// parseReport reads the measurement wrapper's wall time and timeout verdict.
func parseReport(content string) (seconds float64, ok bool, timedOut bool) {
	if m := realRe.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			seconds, ok = v, true
		}
	}
	if m := statusRe.FindStringSubmatch(content); m != nil {
		timedOut = strings.ToLower(strings.TrimSpace(m[1])) == "out of time"
	}
	return seconds, ok, timedOut
}

// sortTaskDirs orders index-named directories numerically (slurm-2 before
// slurm-10) and everything else lexically.
func sortTaskDirs(dirs []string) {
	sort.Slice(dirs, func(i, j int) bool {
		a, aok := slurmIndex(dirs[i])
		b, bok := slurmIndex(dirs[j])
		if aok && bok {
			return a < b
		}
		return dirs[i] < dirs[j]
	})
}

func slurmIndex(dir string) (int, bool) {
	m := slurmDirRe.FindStringSubmatch(filepath.Base(dir))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Summarize aggregates task results per set, preserving first-seen set order.
func Summarize(results []model.TaskResult) []model.SetSummary {
	byName := make(map[string]*model.SetSummary)
	var order []string

	for _, r := range results {
		s, ok := byName[r.Set]
		if !ok {
			s = &model.SetSummary{Set: r.Set}
			byName[r.Set] = s
			order = append(order, r.Set)
		}
		s.Tasks++
		s.MeanSeconds += r.Seconds
		switch r.Status {
		case model.StatusVerified:
			s.Verified++
		case model.StatusFalsified:
			s.Falsified++
		case model.StatusTimeout:
			s.TimedOut++
		case model.StatusUnknown:
			s.Unknown++
		default:
			s.Errors++
		}
	}

	summaries := make([]model.SetSummary, 0, len(order))
	for _, name := range order {
		s := byName[name]
		if s.Tasks > 0 {
			s.MeanSeconds /= float64(s.Tasks)
		}
		summaries = append(summaries, *s)
	}
	return summaries
}
