package interval

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestSortRefNamesNatural(t *testing.T) {
	tests := []struct {
		names []string
		want  []string
	}{
		{
			[]string{"chr10", "chr2", "chrX", "chrY", "chrMT"},
			[]string{"chr2", "chr10", "chrX", "chrY", "chrMT"},
		},
		{
			[]string{"scaffold_2", "chrM", "3", "chr22", "X", "scaffold_1"},
			[]string{"3", "chr22", "X", "chrM", "scaffold_1", "scaffold_2"},
		},
		{
			[]string{"chr1", "1"},
			[]string{"1", "chr1"},
		},
		{
			[]string{},
			[]string{},
		},
	}
	for _, tt := range tests {
		names := append([]string{}, tt.names...)
		SortRefNamesNatural(names)
		expect.EQ(t, names, tt.want)
	}
}

func TestCompareRefNames(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"chr2", "chr10", -1},
		{"chr10", "chr2", 1},
		{"chr10", "10", 1}, // rank tie broken by raw name
		{"chrX", "chrY", -1},
		{"chrY", "chrMT", -1},
		{"chrM", "chrMT", -1},
		{"chrMT", "HLA-A", -1},
		{"HLA-A", "HLA-B", -1},
		{"chr22", "chrX", -1},
	}
	for _, tt := range tests {
		expect.EQ(t, CompareRefNames(tt.a, tt.b), tt.want, "a=%s b=%s", tt.a, tt.b)
	}
}
