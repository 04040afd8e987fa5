package interval

import (
	"sort"
	"strconv"
	"strings"
)

// Natural chromosome ordering: numeric chromosomes ascending by value,
// followed by X, then Y, then mitochondrial (MT/M), then any other named
// sequences in lexical order.  A "chr" prefix is ignored for ranking
// purposes, so "chr10" and "10" rank identically.

const (
	nameClassNumeric = iota
	nameClassX
	nameClassY
	nameClassMito
	nameClassOther
)

func classifyRefName(name string) (class int, num int64) {
	base := strings.TrimPrefix(name, "chr")
	if n, err := strconv.ParseInt(base, 10, 32); err == nil {
		return nameClassNumeric, n
	}
	switch base {
	case "X":
		return nameClassX, 0
	case "Y":
		return nameClassY, 0
	case "MT", "M":
		return nameClassMito, 0
	}
	return nameClassOther, 0
}

// CompareRefNames returns -1, 0, or 1 ordering a before, equal to, or after b
// in natural chromosome order.
func CompareRefNames(a, b string) int {
	aClass, aNum := classifyRefName(a)
	bClass, bNum := classifyRefName(b)
	if aClass != bClass {
		if aClass < bClass {
			return -1
		}
		return 1
	}
	if aClass == nameClassNumeric && aNum != bNum {
		if aNum < bNum {
			return -1
		}
		return 1
	}
	if aClass == nameClassOther {
		return strings.Compare(a, b)
	}
	return strings.Compare(a, b)
}

// SortRefNamesNatural sorts names in place in natural chromosome order.
func SortRefNamesNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return CompareRefNames(names[i], names[j]) < 0
	})
}
