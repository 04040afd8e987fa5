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
	"path/filepath"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// craminoTimeFallback is written when the input's modification time cannot
// be determined.
const craminoTimeFallback = "01/01/2000 00:00:00"

// CraminoSummary carries the numbers reported by the cramino-style QC
// report.
type CraminoSummary struct {
	NAlignments   int64
	NReads        int64
	YieldBases    int64
	YieldOver25kb int64
	MeanCoverage  float64
	N50           int
	N75           int
	MedianLength  float64
	MeanLength    float64
}

// WriteCraminoReport writes the QC summary for bamPath as tab-separated
// key-value lines, in the field order emitted by cramino so that existing
// report parsers keep working.
func WriteCraminoReport(ctx context.Context, path, bamPath string, s CraminoSummary) (err error) {
	var dst file.File
	if dst, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, dst, &err)
	w := tsv.NewWriter(dst.Writer(ctx))

	pctFromTotal := 0.0
	if s.NAlignments > 0 {
		pctFromTotal = float64(s.NReads) / float64(s.NAlignments) * 100
	}
	writeF64 := func(key string, v float64) {
		w.WriteString(key)
		w.WriteFloat64(v, 'f', 2)
	}
	writeI64 := func(key string, v int64) {
		w.WriteString(key)
		w.WriteInt64(v)
	}

	w.WriteString("File name")
	w.WriteString(filepath.Base(bamPath))
	if err = w.EndLine(); err != nil {
		return
	}
	writeI64("Number of alignments", s.NAlignments)
	if err = w.EndLine(); err != nil {
		return
	}
	writeF64("% from total alignments", pctFromTotal)
	if err = w.EndLine(); err != nil {
		return
	}
	writeI64("Number of reads", s.NReads)
	if err = w.EndLine(); err != nil {
		return
	}
	writeF64("Yield [Gb]", float64(s.YieldBases)/1e9)
	if err = w.EndLine(); err != nil {
		return
	}
	writeF64("Mean coverage", s.MeanCoverage)
	if err = w.EndLine(); err != nil {
		return
	}
	writeF64("Yield [Gb] (>25kb)", float64(s.YieldOver25kb)/1e9)
	if err = w.EndLine(); err != nil {
		return
	}
	writeI64("N50", int64(s.N50))
	if err = w.EndLine(); err != nil {
		return
	}
	writeI64("N75", int64(s.N75))
	if err = w.EndLine(); err != nil {
		return
	}
	writeF64("Median length", s.MedianLength)
	if err = w.EndLine(); err != nil {
		return
	}
	writeF64("Mean length", s.MeanLength)
	if err = w.EndLine(); err != nil {
		return
	}
	w.WriteString("") // blank separator line
	if err = w.EndLine(); err != nil {
		return
	}
	w.WriteString("Path")
	w.WriteString(bamPath)
	if err = w.EndLine(); err != nil {
		return
	}
	w.WriteString("Creation time")
	w.WriteString(inputTimestamp(ctx, bamPath))
	if err = w.EndLine(); err != nil {
		return
	}
	err = w.Flush()
	return
}

// inputTimestamp formats bamPath's modification time as dd/mm/yyyy
// hh:mm:ss, falling back to a fixed epoch when the file cannot be stat'd.
func inputTimestamp(ctx context.Context, bamPath string) string {
	info, err := file.Stat(ctx, bamPath)
	if err != nil {
		return craminoTimeFallback
	}
	mtime := info.ModTime()
	if mtime.IsZero() {
		return craminoTimeFallback
	}
	return mtime.Format("02/01/2006 15:04:05")
}
