package ml

import (
	"fmt"
	"sort"
)

// LabelEncoder maps label strings to dense integer indices. Classes are
// ordered by sorted-unique order of the observed strings, so the encoding is
// stable across runs regardless of row order.
type LabelEncoder struct {
	Classes []string       `json:"classes"`
	index   map[string]int `json:"-"`
}

// Fit learns the encoding from the observed labels
func (le *LabelEncoder) Fit(labels []string) {
	seen := make(map[string]bool, len(labels))
	le.Classes = le.Classes[:0]
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			le.Classes = append(le.Classes, label)
		}
	}
	sort.Strings(le.Classes)
	le.rebuildIndex()
}

// Transform encodes labels into class indices. Unknown labels are an error.
func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if le.index == nil {
		le.rebuildIndex()
	}
	encoded := make([]int, len(labels))
	for i, label := range labels {
		idx, ok := le.index[label]
		if !ok {
			return nil, fmt.Errorf("unknown label %q", label)
		}
		encoded[i] = idx
	}
	return encoded, nil
}

// Inverse decodes a class index back to its label string
func (le *LabelEncoder) Inverse(idx int) (string, error) {
	if idx < 0 || idx >= len(le.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", idx, len(le.Classes))
	}
	return le.Classes[idx], nil
}

func (le *LabelEncoder) rebuildIndex() {
	le.index = make(map[string]int, len(le.Classes))
	for i, class := range le.Classes {
		le.index[class] = i
	}
}
