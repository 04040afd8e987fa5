// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coverage

import (
	"sort"
	"sync"

	"github.com/grailbio/coverage/interval"
)

// Profile is the dense per-chromosome result of a run: Depths[p] is the
// depth at 0-based position p.  Positions outside the analyzed intervals are
// zero.  Profiles handed out by the aggregator must be treated as read-only.
type Profile struct {
	Chrom  string
	Depths []uint32
}

// aggregator merges chunk results into per-chromosome profiles.  add is safe
// for concurrent use; finish must be called once, after all workers are
// done.
type aggregator struct {
	rs *interval.RegionSet

	mu          sync.Mutex
	profiles    []*Profile // indexed by refID, nil for unanalyzed refs
	placed      []Chunk
	lengths     map[int]int64
	nAlignments int64
	nReads      int64
}

func newAggregator(rs *interval.RegionSet) *aggregator {
	a := &aggregator{
		rs:       rs,
		profiles: make([]*Profile, len(rs.Refs())),
		lengths:  make(map[int]int64),
	}
	for _, refID := range rs.AnalyzedRefIDs() {
		a.profiles[refID] = &Profile{Chrom: rs.Refs()[refID].Name}
	}
	return a
}

// add places a chunk result into its chromosome slot by chunk identity.  The
// depth copy lands at [chunk.Start, chunk.End); since chunks never overlap,
// concurrent adds touch disjoint slice ranges, but the bookkeeping still
// wants the lock.
func (a *aggregator) add(result chunkResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	profile := a.profiles[result.chunk.RefID]
	if profile.Depths == nil {
		// Allocated on first touch, so the streaming path never holds more
		// than the chromosomes currently in flight.
		profile.Depths = make([]uint32, a.rs.Extent(result.chunk.RefID))
	}
	copy(profile.Depths[result.chunk.Start:result.chunk.End], result.depths)
	a.placed = append(a.placed, result.chunk)
	for length, count := range result.lengths {
		a.lengths[length] += count
	}
	a.nAlignments += result.nAlignments
	a.nReads += result.nReads
}

// finishRef verifies that the chunks placed for refID exactly tile its
// intervals, then hands the chromosome's profile out and drops the
// aggregator's reference to it so the memory can be reclaimed.
func (a *aggregator) finishRef(refID int) (Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var mine []Chunk
	rest := a.placed[:0]
	for _, c := range a.placed {
		if c.RefID == refID {
			mine = append(mine, c)
		} else {
			rest = append(rest, c)
		}
	}
	a.placed = rest
	sort.Slice(mine, func(i, j int) bool { return mine[i].Start < mine[j].Start })
	if err := validateRefChunks(a.rs, refID, mine); err != nil {
		return Profile{}, err
	}
	p := a.profiles[refID]
	a.profiles[refID] = nil
	if p.Depths == nil {
		// No chunk touched this chromosome (nonzero extent, empty interval
		// list); the profile is all zeros.
		p.Depths = make([]uint32, a.rs.Extent(refID))
	}
	return *p, nil
}

// finish drains every analyzed chromosome in rank order.  A gap, overlap, or
// stray chunk means a worker bug or a lost result; the profile cannot be
// trusted, so the error is fatal.
func (a *aggregator) finish() ([]Profile, error) {
	profiles := make([]Profile, 0, len(a.rs.AnalyzedRefIDs()))
	for _, refID := range a.rs.AnalyzedRefIDs() {
		p, err := a.finishRef(refID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.placed) != 0 {
		c := a.placed[0]
		return nil, aggregationErrorf(c.Chrom, c.Start, c.End, "chunk outside every analyzed interval")
	}
	return profiles, nil
}
