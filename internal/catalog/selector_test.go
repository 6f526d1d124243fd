package catalog

import (
	"strings"
	"testing"

	errs "github.com/hlecates/artifact-ijcar26-luna/pkg/errors"
)

// selectorCatalog builds a fixed catalog:
// 1=acasxu 2=cifar_resnet 3=cifar_vgg 4=mnist
func selectorCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := newTestDir(t, map[string]string{
		"bench_acasxu":       "a b\n",
		"bench_cifar_resnet": "a b\n",
		"bench_cifar_vgg":    "a b\n",
		"bench_mnist":        "a b\n",
	})
	c, err := Discover(dir, "bench_")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return c
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantNames []string
	}{
		{
			name:      "single ordinal",
			expr:      "2",
			wantNames: []string{"cifar_resnet"},
		},
		{
			name:      "exact name",
			expr:      "acasxu",
			wantNames: []string{"acasxu"},
		},
		{
			name:      "exact name case-insensitive",
			expr:      "ACASXU",
			wantNames: []string{"acasxu"},
		},
		{
			name:      "wildcard",
			expr:      "cifar*",
			wantNames: []string{"cifar_resnet", "cifar_vgg"},
		},
		{
			name:      "wildcard case-insensitive",
			expr:      "CIFAR*",
			wantNames: []string{"cifar_resnet", "cifar_vgg"},
		},
		{
			name:      "wildcard overlapping ordinal deduplicates",
			expr:      "cifar* 2",
			wantNames: []string{"cifar_resnet", "cifar_vgg"},
		},
		{
			name:      "numeric range",
			expr:      "1..3",
			wantNames: []string{"acasxu", "cifar_resnet", "cifar_vgg"},
		},
		{
			name:      "first-seen order preserved",
			expr:      "3 1",
			wantNames: []string{"cifar_vgg", "acasxu"},
		},
		{
			name:      "mixed names and patterns",
			expr:      "mnist cifar*",
			wantNames: []string{"mnist", "cifar_resnet", "cifar_vgg"},
		},
		{
			name:      "unmatched pattern beside a match is silent",
			expr:      "zzz* mnist",
			wantNames: []string{"mnist"},
		},
		{
			name:      "unknown exact name beside a match is silent",
			expr:      "nosuch mnist",
			wantNames: []string{"mnist"},
		},
		{
			name:      "range plus duplicate ordinal",
			expr:      "1..2 1",
			wantNames: []string{"acasxu", "cifar_resnet"},
		},
	}

	c := selectorCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets, err := c.Resolve(tt.expr)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.expr, err)
			}
			var got []string
			for _, s := range sets {
				got = append(got, s.Name)
			}
			if len(got) != len(tt.wantNames) {
				t.Fatalf("Resolve(%q) = %v, want %v", tt.expr, got, tt.wantNames)
			}
			for i := range got {
				if got[i] != tt.wantNames[i] {
					t.Errorf("Resolve(%q)[%d] = %q, want %q", tt.expr, i, got[i], tt.wantNames[i])
				}
			}
		})
	}
}

func TestResolveNoDuplicatesInRange(t *testing.T) {
	c := selectorCatalog(t)
	sets, err := c.Resolve("1..4 cifar* mnist 2")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	seen := make(map[int]bool)
	for _, s := range sets {
		if seen[s.Ordinal] {
			t.Errorf("ordinal %d selected twice", s.Ordinal)
		}
		seen[s.Ordinal] = true
		if s.Ordinal < 1 || s.Ordinal > c.Len() {
			t.Errorf("ordinal %d outside [1..%d]", s.Ordinal, c.Len())
		}
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		wantCode errs.ErrorCode
		wantMsg  string
	}{
		{
			name:     "empty expression",
			expr:     "",
			wantCode: errs.ErrCodeSelectorEmpty,
			wantMsg:  "no benchmarks selected",
		},
		{
			name:     "unknown name only",
			expr:     "nosuchset",
			wantCode: errs.ErrCodeSelectorEmpty,
			wantMsg:  "no benchmarks selected",
		},
		{
			name:     "unmatched pattern only",
			expr:     "zzz*",
			wantCode: errs.ErrCodeSelectorNoMatch,
			wantMsg:  "no benchmark sets matched pattern 'zzz*'",
		},
		{
			name:     "ordinal out of range",
			expr:     "9",
			wantCode: errs.ErrCodeSelectorSyntax,
			wantMsg:  "out of range",
		},
		{
			name:     "ordinal zero",
			expr:     "0",
			wantCode: errs.ErrCodeSelectorSyntax,
			wantMsg:  "out of range",
		},
		{
			name:     "descending range",
			expr:     "3..1",
			wantCode: errs.ErrCodeSelectorSyntax,
			wantMsg:  "bad range",
		},
	}

	c := selectorCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Resolve(tt.expr)
			if err == nil {
				t.Fatalf("Resolve(%q) expected error, got nil", tt.expr)
			}
			if !errs.IsErrorCode(err, tt.wantCode) {
				t.Errorf("Resolve(%q) error code = %d, want %d", tt.expr, errs.GetErrorCode(err), tt.wantCode)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Resolve(%q) error = %q, want it to contain %q", tt.expr, err.Error(), tt.wantMsg)
			}
		})
	}
}
