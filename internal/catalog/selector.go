package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hlecates/artifact-ijcar26-luna/internal/model"
	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

var (
	rangeRe   = regexp.MustCompile(`^([0-9]+)\.\.([0-9]+)$`)
	numericRe = regexp.MustCompile(`^[0-9]+$`)
)

// Resolve expands a selector expression into benchmark sets, in first-seen
// order with duplicates collapsed. Tokens are whitespace-separated after
// numeric-range expansion (a..b) and resolve independently:
//   - a pure number selects that ordinal,
//   - a token containing '*' matches set names as an anchored
//     case-insensitive pattern,
//   - anything else is an exact case-insensitive name, contributing nothing
//     when absent.
func (c *Catalog) Resolve(expr string) ([]model.BenchmarkSet, error) {
	tokens, err := expandRanges(strings.Fields(expr))
	if err != nil {
		return nil, err
	}

	var selected []model.BenchmarkSet
	seen := make(map[int]bool)
	add := func(set model.BenchmarkSet) {
		if seen[set.Ordinal] {
			return
		}
		seen[set.Ordinal] = true
		selected = append(selected, set)
	}

	// First wildcard token that matched nothing, kept for the diagnostic.
	unmatchedPattern := ""

	for _, tok := range tokens {
		switch {
		case numericRe.MatchString(tok):
			ordinal, err := strconv.Atoi(tok)
			if err != nil || ordinal < 1 || ordinal > c.Len() {
				return nil, errs.New(errs.ErrCodeSelectorSyntax,
					fmt.Sprintf("benchmark index %s out of range [1..%d]", tok, c.Len()))
			}
			set, _ := c.ByOrdinal(ordinal)
			add(set)

		case strings.Contains(tok, "*"):
			re, err := compilePattern(tok)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeSelectorSyntax,
					fmt.Sprintf("bad pattern '%s'", tok), err)
			}
			matched := false
			for _, set := range c.sets {
				if re.MatchString(set.Name) {
					matched = true
					add(set)
				}
			}
			if !matched && unmatchedPattern == "" {
				unmatchedPattern = tok
			}

		default:
			if set, ok := c.ByName(tok); ok {
				add(set)
			}
		}
	}

	if len(selected) == 0 {
		if unmatchedPattern != "" {
			return nil, errs.NewNoMatchError(unmatchedPattern)
		}
		return nil, errs.NewEmptySelectionError()
	}
	return selected, nil
}

// expandRanges rewrites every a..b token into the literal sequence a..b.
func expandRanges(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		m := rangeRe.FindStringSubmatch(tok)
		if m == nil {
			out = append(out, tok)
			continue
		}
		lo, loErr := strconv.Atoi(m[1])
		hi, hiErr := strconv.Atoi(m[2])
		if loErr != nil || hiErr != nil || lo > hi {
			return nil, errs.New(errs.ErrCodeSelectorSyntax,
				fmt.Sprintf("bad range '%s' (want a..b with a <= b)", tok))
		}
		for i := lo; i <= hi; i++ {
			out = append(out, strconv.Itoa(i))
		}
	}
	return out, nil
}

// compilePattern turns a glob token into an anchored case-insensitive
// regexp: '*' matches any sequence, everything else is literal.
func compilePattern(tok string) (*regexp.Regexp, error) {
	parts := strings.Split(tok, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
}
