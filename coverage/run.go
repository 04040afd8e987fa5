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
	"context"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/coverage/binning"
	"github.com/grailbio/coverage/encoding/bamprovider"
	"github.com/grailbio/coverage/interval"
	"github.com/grailbio/coverage/output"
	"github.com/grailbio/coverage/stats"
	"github.com/grailbio/hts/sam"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func refsFromHeader(header *sam.Header) []interval.Ref {
	refs := make([]interval.Ref, 0, len(header.Refs()))
	for _, ref := range header.Refs() {
		refs = append(refs, interval.Ref{Name: ref.Name(), Len: interval.PosType(ref.Len())})
	}
	return refs
}

func loadEntries(path string) ([]interval.Entry, error) {
	entries, err := interval.ScanEntriesFromPath(path)
	if err != nil {
		if _, ok := err.(*interval.RegionError); !ok {
			err = &IoError{Path: path, Err: err}
		}
		return nil, err
	}
	return entries, nil
}

// loadRegionSet assembles the analyzed-region description from the header
// plus the optional -bed / -region / -chrom-bed restrictions.
func loadRegionSet(header *sam.Header, opts *Opts) (*interval.RegionSet, error) {
	refs := refsFromHeader(header)
	var regions, extents []interval.Entry
	var err error
	if opts.BedPath != "" {
		if regions, err = loadEntries(opts.BedPath); err != nil {
			return nil, err
		}
	}
	if opts.Region != "" {
		var entry interval.Entry
		if entry, err = interval.ParseRegionString(opts.Region); err != nil {
			return nil, err
		}
		regions = append(regions, entry)
	}
	if opts.ChromBedPath != "" {
		if extents, err = loadEntries(opts.ChromBedPath); err != nil {
			return nil, err
		}
	}
	return interval.NewRegionSet(refs, regions, extents)
}

// processChunks accumulates chunks into agg with up to parallelism workers.
// On the first failure no further chunks are dispatched, in-flight chunks
// drain, and the first error is returned.
func processChunks(provider bamprovider.Provider, bamPath string, headerRefs []*sam.Reference,
	chunks []Chunk, filter recordFilter, agg *aggregator, parallelism int) error {
	nChunk := len(chunks)
	if nChunk == 0 {
		return nil
	}
	parallelism = minInt(parallelism, nChunk)
	var aborted int32
	var firstErr errors.Once
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * nChunk) / parallelism
		endIdx := ((jobIdx + 1) * nChunk) / parallelism
		for _, chunk := range chunks[startIdx:endIdx] {
			if atomic.LoadInt32(&aborted) != 0 {
				// Another job failed; stop dispatching new chunks and let
				// in-flight work drain.
				return nil
			}
			iter := provider.NewIterator(headerRefs[chunk.RefID], int(chunk.Start), int(chunk.End))
			result := accumulateChunk(iter, chunk, filter)
			if cerr := iter.Close(); cerr != nil {
				atomic.StoreInt32(&aborted, 1)
				werr := &IoError{Path: bamPath, Err: cerr}
				firstErr.Set(werr)
				return werr
			}
			agg.add(result)
		}
		return nil
	})
	if e := firstErr.Err(); e != nil {
		err = e
	}
	return err
}

// profileSink consumes finished per-chromosome profiles one at a time: it
// folds them into the genome-wide accumulator, logs per-chromosome stats,
// and keeps the binned series for the bin/plot outputs.  The streaming path
// additionally writes position rows as each profile arrives.
type profileSink struct {
	opts   *Opts
	genome *stats.CoverageAccum
	binned []binning.Binned
	pw     *output.PositionWriter
}

func (s *profileSink) consume(p Profile) error {
	cs := stats.Coverage(p.Depths, s.opts.ShowZeros)
	s.genome.Add(p.Depths, s.opts.ShowZeros)
	log.Printf("coverage: %s: mean %.2f median %.1f stdev %.2f max %d",
		p.Chrom, cs.Mean, cs.Median, cs.Stdev, cs.Max)
	if (s.opts.BinPath != "") || (s.opts.PlotPath != "") {
		b, err := binning.BinProfile(p.Chrom, p.Depths, s.opts.MaxPoints, s.opts.ShowZeros)
		if err != nil {
			return err
		}
		s.binned = append(s.binned, b)
	}
	if s.pw != nil {
		if err := s.pw.Write(output.Series{Chrom: p.Chrom, Depths: p.Depths}); err != nil {
			return &IoError{Path: s.opts.OutPath, Err: err}
		}
	}
	return nil
}

// useStreaming reports whether profiles should be processed one chromosome
// at a time.  Streaming bounds peak memory to roughly one chromosome's dense
// profile at the cost of a narrower worker pool per chromosome.
func useStreaming(ctx context.Context, bamPath string, opts *Opts) bool {
	if opts.Streaming {
		return true
	}
	if opts.MemoryLimitMB <= 0 {
		return false
	}
	info, err := file.Stat(ctx, bamPath)
	if err != nil {
		// Size unknown; keep the in-memory path.
		return false
	}
	return info.Size() > opts.MemoryLimitMB<<20
}

type chunkGroup struct {
	refID  int
	chrom  string
	chunks []Chunk
}

// groupChunks splits the chunk list into per-chromosome groups ordered by
// natural chromosome name, so streamed rows come out in the same order the
// in-memory writer produces.
func groupChunks(rs *interval.RegionSet, chunks []Chunk) []chunkGroup {
	analyzed := rs.AnalyzedRefIDs()
	groups := make([]chunkGroup, 0, len(analyzed))
	byRef := make(map[int]int, len(analyzed))
	for _, refID := range analyzed {
		byRef[refID] = len(groups)
		groups = append(groups, chunkGroup{refID: refID, chrom: rs.Refs()[refID].Name})
	}
	for _, c := range chunks {
		g := &groups[byRef[c.RefID]]
		g.chunks = append(g.chunks, c)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return interval.CompareRefNames(groups[i].chrom, groups[j].chrom) < 0
	})
	return groups
}

// runStreaming processes one chromosome at a time in natural order, writing
// position rows as each chromosome finishes so that at most one dense
// profile is resident.  On failure the partially written position file is
// removed.
func runStreaming(ctx context.Context, provider bamprovider.Provider, bamPath string, opts *Opts,
	rs *interval.RegionSet, chunks []Chunk, agg *aggregator, filter recordFilter,
	headerRefs []*sam.Reference, parallelism int, sink *profileSink) (err error) {
	groups := groupChunks(rs, chunks)
	log.Printf("coverage: streaming %d chromosomes (%d chunks, %d jobs)", len(groups), len(chunks), parallelism)
	var pw *output.PositionWriter
	if pw, err = output.NewPositionWriter(ctx, opts.OutPath, opts.ShowZeros, parallelism); err != nil {
		err = &IoError{Path: opts.OutPath, Err: err}
		return
	}
	sink.pw = pw
	defer func() {
		if e := pw.Close(ctx); e != nil && err == nil {
			err = &IoError{Path: opts.OutPath, Err: e}
		}
		if err != nil {
			// Do not leave a partial position file behind.
			if e := file.Remove(ctx, opts.OutPath); e != nil {
				log.Error.Printf("coverage: removing partial output %s: %v", opts.OutPath, e)
			}
		}
	}()
	for _, g := range groups {
		if err = processChunks(provider, bamPath, headerRefs, g.chunks, filter, agg, parallelism); err != nil {
			return
		}
		var p Profile
		if p, err = agg.finishRef(g.refID); err != nil {
			return
		}
		if err = sink.consume(p); err != nil {
			return
		}
	}
	return
}

// Run computes coverage for the BAM file at bamPath and writes the
// configured outputs.  On any failure no further chunks are dispatched,
// in-flight chunks drain, the first error is returned, and no output files
// are left behind.
func Run(ctx context.Context, bamPath string, rawOpts *Opts) (err error) {
	opts := DefaultOpts
	if rawOpts != nil {
		opts = *rawOpts
	}
	if err = validateOpts(&opts); err != nil {
		return
	}
	provider := bamprovider.NewProvider(bamPath, bamprovider.ProviderOpts{Index: opts.BamIndexPath})
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = &IoError{Path: bamPath, Err: e}
		}
	}()
	return run(ctx, provider, bamPath, &opts)
}

// run drives the whole computation against an already-open provider.  opts
// must be validated.  Split from Run so tests can substitute a provider.
func run(ctx context.Context, provider bamprovider.Provider, bamPath string, opts *Opts) (err error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU() / 2
		if parallelism < 1 {
			parallelism = 1
		}
	}
	var header *sam.Header
	if header, err = provider.GetHeader(); err != nil {
		err = &IoError{Path: bamPath, Err: err}
		return
	}
	var rs *interval.RegionSet
	if rs, err = loadRegionSet(header, opts); err != nil {
		return
	}
	var chunks []Chunk
	if chunks, err = PartitionChunks(rs, opts.ChunkSize); err != nil {
		return
	}

	agg := newAggregator(rs)
	filter := recordFilter{
		flagExclude: sam.Flags(opts.FlagExclude),
		minMapq:     byte(opts.Mapq),
	}
	headerRefs := header.Refs()
	sink := &profileSink{opts: opts, genome: stats.NewCoverageAccum()}

	if useStreaming(ctx, bamPath, opts) {
		err = runStreaming(ctx, provider, bamPath, opts, rs, chunks, agg, filter, headerRefs, parallelism, sink)
	} else {
		log.Printf("coverage: starting main loop (%d jobs, %d chunks)", minInt(parallelism, len(chunks)), len(chunks))
		if err = processChunks(provider, bamPath, headerRefs, chunks, filter, agg, parallelism); err != nil {
			return
		}
		var profiles []Profile
		if profiles, err = agg.finish(); err != nil {
			return
		}
		series := make([]output.Series, 0, len(profiles))
		for i := range profiles {
			if err = sink.consume(profiles[i]); err != nil {
				return
			}
			series = append(series, output.Series{Chrom: profiles[i].Chrom, Depths: profiles[i].Depths})
		}
		if err = output.WritePositionTSV(ctx, opts.OutPath, series, opts.ShowZeros, parallelism); err != nil {
			err = &IoError{Path: opts.OutPath, Err: err}
		}
	}
	if err != nil {
		return
	}

	genomeSize := opts.GenomeSize
	if genomeSize == 0 {
		genomeSize = rs.CoveredBases()
	}
	readStats := stats.ReadLengths(agg.lengths)
	var meanCov float64
	if meanCov, err = stats.GenomeMeanCoverage(readStats.YieldBases, genomeSize); err != nil {
		return
	}
	gs := sink.genome.Stats()
	log.Printf("coverage: genome: mean %.2f median %.1f stdev %.2f; yield-based mean %.2f over %d bases",
		gs.Mean, gs.Median, gs.Stdev, meanCov, genomeSize)

	if opts.BinPath != "" {
		if err = output.WriteBinTSV(ctx, opts.BinPath, sink.binned, parallelism); err != nil {
			err = &IoError{Path: opts.BinPath, Err: err}
			return
		}
	}
	if opts.PlotPath != "" {
		plot := output.BuildPlotData(sink.binned, opts.LogScale)
		if err = output.WritePlotTSV(ctx, opts.PlotPath, plot); err != nil {
			err = &IoError{Path: opts.PlotPath, Err: err}
			return
		}
	}
	if opts.CraminoPath != "" {
		summary := output.CraminoSummary{
			NAlignments:   agg.nAlignments,
			NReads:        agg.nReads,
			YieldBases:    readStats.YieldBases,
			YieldOver25kb: readStats.YieldOver25kb,
			MeanCoverage:  meanCov,
			N50:           readStats.N50,
			N75:           readStats.N75,
			MedianLength:  readStats.MedianLength,
			MeanLength:    readStats.MeanLength,
		}
		if err = output.WriteCraminoReport(ctx, opts.CraminoPath, bamPath, summary); err != nil {
			err = &IoError{Path: opts.CraminoPath, Err: err}
			return
		}
	}
	log.Printf("coverage: done, results written to %s", opts.OutPath)
	return
}
