package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// Catalog holds the discovered benchmark sets in ordinal order plus a
// case-insensitive name index. Re-discovery over identical directory
// contents yields identical ordinals.
type Catalog struct {
	sets   []model.BenchmarkSet // ordinal i lives at sets[i-1]
	byName map[string]int       // lower-cased set name -> ordinal
}

// Discover scans dir (non-recursive) for files carrying prefix, strips the
// prefix to obtain each set's name, sorts lexically and assigns ordinals
// from 1. Zero matching files is a configuration error.
func Discover(dir, prefix string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.NewCatalogError(fmt.Sprintf("read benchmark directory %s", dir), err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, errs.New(errs.ErrCodeNoBenchmarkSets,
			fmt.Sprintf("no benchmark sets in %s with prefix %q", dir, prefix))
	}
	sort.Strings(names)

	c := &Catalog{byName: make(map[string]int, len(names))}
	for i, fname := range names {
		set := model.BenchmarkSet{
			Ordinal: i + 1,
			Name:    strings.TrimPrefix(fname, prefix),
			Path:    filepath.Join(dir, fname),
		}
		c.sets = append(c.sets, set)
		c.byName[strings.ToLower(set.Name)] = set.Ordinal
	}

	zap.L().Debug("benchmark catalog built",
		zap.String("dir", dir),
		zap.Int("sets", len(c.sets)),
	)
	return c, nil
}

// Len returns the number of discovered sets.
func (c *Catalog) Len() int {
	return len(c.sets)
}

// ByOrdinal returns the set with the given 1-based ordinal.
func (c *Catalog) ByOrdinal(ordinal int) (model.BenchmarkSet, bool) {
	if ordinal < 1 || ordinal > len(c.sets) {
		return model.BenchmarkSet{}, false
	}
	return c.sets[ordinal-1], true
}

// ByName looks a set up by name, case-insensitively.
func (c *Catalog) ByName(name string) (model.BenchmarkSet, bool) {
	ordinal, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return model.BenchmarkSet{}, false
	}
	return c.sets[ordinal-1], true
}

// Sets returns all sets in ordinal order.
func (c *Catalog) Sets() []model.BenchmarkSet {
	out := make([]model.BenchmarkSet, len(c.sets))
	copy(out, c.sets)
	return out
}

// Load reads the set file, enforces the file format and fills LineCount.
// The count becomes the array-job size, so a malformed file must fail here,
// before anything is submitted.
func (c *Catalog) Load(set model.BenchmarkSet) (model.BenchmarkSet, error) {
	data, err := os.ReadFile(set.Path)
	if err != nil {
		return set, errs.NewCatalogError(fmt.Sprintf("read benchmark set %s", set.Name), err)
	}

	n, err := countTaskLines(data)
	if err != nil {
		return set, errs.Wrap(errs.ErrCodeBenchmarkFormat,
			fmt.Sprintf("benchmark set %s (%s)", set.Name, set.Path), err)
	}
	set.LineCount = n
	return set, nil
}

// countTaskLines counts task lines. The file must end with a trailing
// newline: array tasks extract their line by index with sed, so a truncated
// final line would silently run a partial task.
func countTaskLines(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("file is empty")
	}
	if data[len(data)-1] != '\n' {
		return 0, fmt.Errorf("missing trailing newline")
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			return 0, fmt.Errorf("blank task line %d", i+1)
		}
	}
	return len(lines), nil
}

// ReadTaskLines returns the task lines of a benchmark file, validated the
// same way Load validates the original.
func ReadTaskLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewCatalogError(fmt.Sprintf("read benchmark file %s", path), err)
	}
	if _, err := countTaskLines(data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeBenchmarkFormat, path, err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), nil
}
