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

package output

import (
	"context"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/coverage/binning"
)

// PlotSeries is one chromosome's binned series positioned on the
// genome-wide axis: a bin at chromosome position p plots at Offset+p.
type PlotSeries struct {
	Chrom  string
	Offset int64
	Bins   []binning.Bin
}

// PlotData is everything a renderer needs for the genome-wide coverage
// plot.  LogScale is a display hint only; depths are never transformed
// here.
type PlotData struct {
	LogScale  bool
	TotalSpan int64
	Series    []PlotSeries
}

// BuildPlotData lays the binned chromosomes end to end in natural order and
// computes each one's cumulative offset.
func BuildPlotData(binned []binning.Binned, logScale bool) PlotData {
	plot := PlotData{LogScale: logScale}
	for _, b := range binning.GenomeWide(binned) {
		plot.Series = append(plot.Series, PlotSeries{
			Chrom:  b.Chrom,
			Offset: plot.TotalSpan,
			Bins:   b.Bins,
		})
		plot.TotalSpan += int64(b.Extent)
	}
	return plot
}

// WritePlotTSV writes the genome-wide series as TSV for an external
// renderer: a "#log_scale=..." hint line, a column header, then one row per
// nonempty bin with the 1-based genome-axis position of the bin start.
func WritePlotTSV(ctx context.Context, path string, plot PlotData) (err error) {
	dst, w, closer, err := openTSV(ctx, path, 1)
	if err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()

	w.WriteString("#log_scale=" + strconv.FormatBool(plot.LogScale))
	if err = w.EndLine(); err != nil {
		return
	}
	w.WriteString("#genome_position\tchromosome\tposition\tdepth")
	if err = w.EndLine(); err != nil {
		return
	}
	for _, s := range plot.Series {
		for _, bin := range s.Bins {
			if bin.Empty {
				continue
			}
			w.WriteInt64(s.Offset + int64(bin.Start) + 1)
			w.WriteString(s.Chrom)
			w.WriteUint32(uint32(bin.Start + 1))
			w.WriteFloat64(bin.Depth, 'f', 2)
			if err = w.EndLine(); err != nil {
				return
			}
		}
	}
	err = w.Flush()
	return
}
