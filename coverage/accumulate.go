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
	"github.com/grailbio/coverage/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
)

// recordFilter decides which alignment records contribute to coverage.
type recordFilter struct {
	flagExclude sam.Flags
	minMapq     byte
}

func (f recordFilter) keep(rec *sam.Record) bool {
	if (rec.Flags & f.flagExclude) != 0 {
		return false
	}
	return rec.MapQ >= f.minMapq
}

// chunkResult holds everything a worker learns from one chunk.  depths[i] is
// the depth at position chunk.Start+i.  lengths counts qualifying records by
// sequence length; a record is length-counted only by the chunk containing
// its start position, so the chunk tiling guarantees each record is counted
// at most once genome-wide.  nAlignments counts all start-attributed records,
// before filtering; nReads counts the qualifying subset.
type chunkResult struct {
	chunk       Chunk
	depths      []uint32
	lengths     map[int]int64
	nAlignments int64
	nReads      int64
}

// accumulateChunk drains iter, which must yield the records intersecting
// chunk's span, into a fresh chunkResult.  The caller owns (and closes) iter;
// iter.Err is surfaced through iter.Close, not here.
func accumulateChunk(iter bamprovider.Iterator, chunk Chunk, filter recordFilter) chunkResult {
	result := chunkResult{
		chunk:   chunk,
		depths:  make([]uint32, chunk.End-chunk.Start),
		lengths: make(map[int]int64),
	}
	chunkStart := int(chunk.Start)
	chunkEnd := int(chunk.End)
	for iter.Scan() {
		rec := iter.Record()
		// The iterator guarantees rec.Pos < chunkEnd, so start-attribution
		// only needs the lower bound.
		startHere := rec.Pos >= chunkStart
		if startHere {
			result.nAlignments++
		}
		if !filter.keep(rec) {
			continue
		}
		if startHere {
			result.nReads++
			result.lengths[rec.Seq.Length]++
		}
		start := rec.Pos
		if start < chunkStart {
			start = chunkStart
		}
		end := rec.End()
		if end > chunkEnd {
			end = chunkEnd
		}
		for pos := start; pos < end; pos++ {
			result.depths[pos-chunkStart]++
		}
	}
	return result
}
