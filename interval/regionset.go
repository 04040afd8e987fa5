package interval

import (
	"sort"
)

// RegionSet describes the analyzed portion of a genome: for every reference
// it holds an ordered, disjoint interval sequence plus the analysis extent
// [0, Extent).  A RegionSet is immutable after construction and safe for
// concurrent readers.
//
// Overlapping or touching input intervals on one chromosome are unioned
// during construction.  This mirrors the usual BED interval-union semantics;
// callers that need per-interval multiplicity must not rely on this type.
type RegionSet struct {
	refs   []Ref
	byName map[string]int
	// intervals is a slice of length-2N sequences, indexed by ref ID, where
	// interval #k occupies elements [2k] and [2k+1] and intervals are stored
	// in increasing order.  This matches the representation used for BED
	// interval unions; it keeps merge and search code simple.
	intervals [][]PosType
	// extents[i] is the analysis extent end for ref i; zero when ref i is not
	// analyzed at all.
	extents []PosType
}

// NewWholeGenomeRegionSet builds a RegionSet covering every reference
// end-to-end.
func NewWholeGenomeRegionSet(refs []Ref) (*RegionSet, error) {
	return NewRegionSet(refs, nil, nil)
}

// NewRegionSet builds a RegionSet from the reference list and two optional
// entry lists:
//
// regions filters the analyzed positions; entries are clipped to chromosome
// bounds, and overlapping entries are unioned.  extents independently
// restricts the analyzed chromosome set and each chromosome's extent (e.g.
// primary chromosomes only), while regions still filters positions within
// those extents.  When extents is nil every referenced chromosome is
// analyzed over its full length; when regions is nil the extents double as
// the analyzed intervals.
//
// A RegionError is returned for an entry naming an unknown chromosome, for a
// malformed entry, and when clipping leaves every chromosome without any
// analyzable base.
func NewRegionSet(refs []Ref, regions, extents []Entry) (*RegionSet, error) {
	rs := &RegionSet{
		refs:      refs,
		byName:    make(map[string]int, len(refs)),
		intervals: make([][]PosType, len(refs)),
		extents:   make([]PosType, len(refs)),
	}
	for refID, ref := range refs {
		rs.byName[ref.Name] = refID
	}

	if extents == nil {
		if regions == nil {
			for refID, ref := range refs {
				rs.extents[refID] = ref.Len
			}
		} else {
			// Only chromosomes mentioned in the region list are analyzed;
			// materializing a profile for every other chromosome of a
			// whole-genome reference would waste memory on guaranteed zeros.
			for _, entry := range regions {
				if refID, ok := rs.byName[entry.ChrName]; ok {
					rs.extents[refID] = refs[refID].Len
				}
			}
		}
	} else {
		for _, entry := range extents {
			refID, ok := rs.byName[entry.ChrName]
			if !ok {
				return nil, regionErrorf(entry.ChrName, entry.Start0, entry.End, 0, "unknown chromosome in extent list")
			}
			end := entry.End
			if end > refs[refID].Len {
				end = refs[refID].Len
			}
			if end > rs.extents[refID] {
				rs.extents[refID] = end
			}
		}
	}

	source := regions
	if source == nil {
		if extents == nil {
			source = make([]Entry, 0, len(refs))
			for _, ref := range refs {
				source = append(source, Entry{ChrName: ref.Name, Start0: 0, End: ref.Len})
			}
		} else {
			source = extents
		}
	}

	perRef := make([][]Entry, len(refs))
	for _, entry := range source {
		if entry.End < entry.Start0 {
			return nil, regionErrorf(entry.ChrName, entry.Start0, entry.End, 0, "interval start is not before end")
		}
		refID, ok := rs.byName[entry.ChrName]
		if !ok {
			return nil, regionErrorf(entry.ChrName, entry.Start0, entry.End, 0, "unknown chromosome")
		}
		if rs.extents[refID] == 0 {
			// Chromosome excluded by the extent list; its region entries are
			// filtered, not errors.
			continue
		}
		start, end := entry.Start0, entry.End
		if end > rs.extents[refID] {
			end = rs.extents[refID]
		}
		if start >= end {
			// Clipped to nothing, or a zero-length 'mention' of the chromosome.
			continue
		}
		perRef[refID] = append(perRef[refID], Entry{ChrName: entry.ChrName, Start0: start, End: end})
	}

	nBases := int64(0)
	for refID, entries := range perRef {
		if len(entries) == 0 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Start0 < entries[j].Start0 })
		merged := rs.intervals[refID]
		curStart, curEnd := entries[0].Start0, entries[0].End
		for _, entry := range entries[1:] {
			if entry.Start0 > curEnd {
				merged = append(merged, curStart, curEnd)
				curStart, curEnd = entry.Start0, entry.End
				continue
			}
			if entry.End > curEnd {
				curEnd = entry.End
			}
		}
		merged = append(merged, curStart, curEnd)
		rs.intervals[refID] = merged
		for i := 0; i < len(merged); i += 2 {
			nBases += int64(merged[i+1] - merged[i])
		}
	}
	if nBases == 0 {
		return nil, regionErrorf("", 0, 0, 0, "no analyzable bases remain after clipping")
	}
	return rs, nil
}

// Refs returns the full reference list, in natural rank order.
func (rs *RegionSet) Refs() []Ref { return rs.refs }

// RefID returns the rank of the named reference.
func (rs *RegionSet) RefID(name string) (int, bool) {
	refID, ok := rs.byName[name]
	return refID, ok
}

// Extent returns the analysis extent end for the given reference, or zero if
// the reference is not analyzed.
func (rs *RegionSet) Extent(refID int) PosType { return rs.extents[refID] }

// Intervals returns the merged interval sequence for the given reference as
// a flat start/end pair sequence.  Callers must not mutate the result.
func (rs *RegionSet) Intervals(refID int) []PosType { return rs.intervals[refID] }

// AnalyzedRefIDs returns the IDs of references with a nonzero extent, in
// rank order.
func (rs *RegionSet) AnalyzedRefIDs() []int {
	var ids []int
	for refID := range rs.refs {
		if rs.extents[refID] > 0 {
			ids = append(ids, refID)
		}
	}
	return ids
}

// CoveredBases returns the total number of analyzable bases in the set.
func (rs *RegionSet) CoveredBases() int64 {
	var n int64
	for _, ivs := range rs.intervals {
		for i := 0; i < len(ivs); i += 2 {
			n += int64(ivs[i+1] - ivs[i])
		}
	}
	return n
}
