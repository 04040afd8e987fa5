// Package bamprovider provides utilities for scanning a BAM file in
// parallel.
//
// The Provider hands out Iterators over genomic ranges; each Iterator yields
// the records whose reference spans intersect the range.
package bamprovider
