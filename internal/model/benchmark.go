package model

// BenchmarkSet is one discovered benchmark-set file: a text file listing one
// verification task per line. Ordinals are contiguous from 1 in sorted
// discovery order. LineCount is filled by Catalog.Load and becomes the
// array-job size.
type BenchmarkSet struct {
	Ordinal   int    `json:"ordinal"`    // 1-based position in discovery order
	Name      string `json:"name"`       // file name with the prefix stripped
	Path      string `json:"path"`       // path of the set file
	LineCount int    `json:"line_count"` // number of task lines
}
