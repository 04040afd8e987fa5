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

// Package output writes coverage results: per-position and per-bin TSV
// files (bgzip-compressed when the path says so), plot-ready series, and a
// cramino-style QC report.  Positions are 0-based internally and 1-based in
// text, per the usual convention.
package output

import (
	"context"
	"sort"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/coverage/binning"
	"github.com/grailbio/coverage/interval"
	"github.com/grailbio/hts/bgzf"
)

// Series is one chromosome's dense profile, as handed to the writers.
type Series struct {
	Chrom  string
	Depths []uint32
}

func sortSeriesNatural(series []Series) []Series {
	ordered := make([]Series, len(series))
	copy(ordered, series)
	sort.SliceStable(ordered, func(i, j int) bool {
		return interval.CompareRefNames(ordered[i].Chrom, ordered[j].Chrom) < 0
	})
	return ordered
}

func bgzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz")
}

// openTSV creates path and layers a TSV writer on top, inserting a bgzf
// compressor for .gz/.bgz paths.  closer finishes the compressor; the caller
// still flushes the TSV writer first and closes dst itself.
func openTSV(ctx context.Context, path string, parallelism int) (dst file.File, w *tsv.Writer, closer func() error, err error) {
	if dst, err = file.Create(ctx, path); err != nil {
		return
	}
	if bgzipPath(path) {
		bgzfWriter := bgzf.NewWriter(dst.Writer(ctx), parallelism)
		w = tsv.NewWriter(bgzfWriter)
		closer = bgzfWriter.Close
		return
	}
	w = tsv.NewWriter(dst.Writer(ctx))
	closer = func() error { return nil }
	return
}

// PositionWriter emits per-position rows one chromosome at a time, in the
// order the series are handed to Write.  The streaming run path uses it to
// write each profile as it finishes; callers holding every profile in memory
// can use WritePositionTSV instead.
type PositionWriter struct {
	dst       file.File
	w         *tsv.Writer
	closer    func() error
	showZeros bool
}

// NewPositionWriter creates path and writes the header row.
func NewPositionWriter(ctx context.Context, path string, showZeros bool, parallelism int) (*PositionWriter, error) {
	dst, w, closer, err := openTSV(ctx, path, parallelism)
	if err != nil {
		return nil, err
	}
	pw := &PositionWriter{dst: dst, w: w, closer: closer, showZeros: showZeros}
	w.WriteString("#chromosome\tposition\tcount")
	if err = w.EndLine(); err != nil {
		pw.Close(ctx) // nolint: errcheck
		return nil, err
	}
	return pw, nil
}

// Write appends one row per position of s: chromosome, 1-based position,
// depth.  Zero-depth rows are omitted unless the writer was created with
// showZeros.
func (pw *PositionWriter) Write(s Series) error {
	for pos, depth := range s.Depths {
		if (depth == 0) && !pw.showZeros {
			continue
		}
		pw.w.WriteString(s.Chrom)
		pw.w.WriteUint32(uint32(pos + 1))
		pw.w.WriteUint32(depth)
		if err := pw.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered rows and closes the underlying file.
func (pw *PositionWriter) Close(ctx context.Context) (err error) {
	err = pw.w.Flush()
	if e := pw.closer(); e != nil && err == nil {
		err = e
	}
	if e := pw.dst.Close(ctx); e != nil && err == nil {
		err = e
	}
	return
}

// WritePositionTSV writes one row per analyzed position, in natural
// chromosome order: chromosome, 1-based position, depth.  Zero-depth rows
// are omitted unless showZeros is set.
func WritePositionTSV(ctx context.Context, path string, series []Series, showZeros bool, parallelism int) error {
	pw, err := NewPositionWriter(ctx, path, showZeros, parallelism)
	if err != nil {
		return err
	}
	for _, s := range sortSeriesNatural(series) {
		if err = pw.Write(s); err != nil {
			pw.Close(ctx) // nolint: errcheck
			return err
		}
	}
	return pw.Close(ctx)
}

// WriteBinTSV writes one row per bin, in natural chromosome order:
// chromosome, 0-based start, end, mean depth.  Empty bins write '.' for the
// depth.
func WriteBinTSV(ctx context.Context, path string, binned []binning.Binned, parallelism int) (err error) {
	dst, w, closer, err := openTSV(ctx, path, parallelism)
	if err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()

	w.WriteString("#chromosome\tstart\tend\tdepth")
	if err = w.EndLine(); err != nil {
		return
	}
	for _, b := range binning.GenomeWide(binned) {
		for _, bin := range b.Bins {
			w.WriteString(b.Chrom)
			w.WriteUint32(uint32(bin.Start))
			w.WriteUint32(uint32(bin.End))
			if bin.Empty {
				w.WriteString(".")
			} else {
				w.WriteFloat64(bin.Depth, 'f', 2)
			}
			if err = w.EndLine(); err != nil {
				return
			}
		}
	}
	err = w.Flush()
	return
}
