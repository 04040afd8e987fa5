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
package main

/*
bio-coverage computes per-position depth-of-coverage profiles from a sorted,
indexed BAM, along with binned plot data, coverage/read-length statistics,
and an optional cramino-style QC report.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/coverage/coverage"
)

var (
	bedPath      = flag.String("bed", coverage.DefaultOpts.BedPath, "Input BED path restricting the analyzed positions; at most one of -bed and -region")
	chromBedPath = flag.String("chrom-bed", coverage.DefaultOpts.ChromBedPath, "Input BED path restricting the analyzed chromosomes and their extents (e.g. primary chromosomes only)")
	region       = flag.String("region", coverage.DefaultOpts.Region, "Restrict coverage computation to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; at most one of -bed and -region")
	bamIndexPath = flag.String("index", coverage.DefaultOpts.BamIndexPath, "Input BAM index path. Defaults to bampath + .bai")
	chunkSize    = flag.Int("chunk-size", coverage.DefaultOpts.ChunkSize, "Number of reference bases per work chunk")
	flagExclude  = flag.Int("flag-exclude", coverage.DefaultOpts.FlagExclude, "Reads with a FLAG bit intersecting this value are skipped")
	mapq         = flag.Int("mapq", coverage.DefaultOpts.Mapq, "Reads with MAPQ below this level are skipped")
	parallelism  = flag.Int("parallelism", 0, "Maximum number of simultaneous coverage jobs to launch; 0 = half of runtime.NumCPU()")
	maxPoints    = flag.Int("max-points", coverage.DefaultOpts.MaxPoints, "Upper bound on per-chromosome bin count in binned/plot outputs")
	genomeSize   = flag.Int64("genome-size", coverage.DefaultOpts.GenomeSize, "Genome size used as the yield-based mean-coverage denominator; 0 = total analyzed-region size")
	streaming    = flag.Bool("streaming", coverage.DefaultOpts.Streaming, "Force the memory-bounded streaming mode (one chromosome at a time)")
	memoryLimit  = flag.Int64("memory-limit", coverage.DefaultOpts.MemoryLimitMB, "Input size in MB beyond which streaming mode kicks in on its own; 0 disables the heuristic")
	showZeros    = flag.Bool("show-zeros", coverage.DefaultOpts.ShowZeros, "Include zero-depth positions in outputs and statistics")
	logScale     = flag.Bool("log-scale", coverage.DefaultOpts.LogScale, "Mark plot data for log-scale rendering")
	outPath      = flag.String("out", coverage.DefaultOpts.OutPath, "Per-position TSV output path; a .gz/.bgz suffix enables bgzip compression")
	binPath      = flag.String("bin-out", coverage.DefaultOpts.BinPath, "Binned TSV output path; empty disables")
	plotPath     = flag.String("plot-out", coverage.DefaultOpts.PlotPath, "Plot-data TSV output path; empty disables")
	craminoPath  = flag.String("cramino-out", coverage.DefaultOpts.CraminoPath, "Cramino-style QC report path; empty disables")
)

func bioCoverageUsage() {
	fmt.Printf("Usage: %s [OPTIONS] bampath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioCoverageUsage
	shutdown := grail.Init()
	defer shutdown()

	allArgs := flag.Args()
	nPositionalArgs := flag.NArg()
	positionalArgs := allArgs[len(allArgs)-nPositionalArgs:]
	if nPositionalArgs != 1 {
		if nPositionalArgs < 1 {
			log.Fatalf("Missing positional argument (bampath required); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		} else {
			log.Fatalf("Too many positional arguments (only bampath expected); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		}
	}
	ctx := vcontext.Background()
	opts := coverage.Opts{
		BedPath:       *bedPath,
		ChromBedPath:  *chromBedPath,
		Region:        *region,
		BamIndexPath:  *bamIndexPath,
		ChunkSize:     *chunkSize,
		FlagExclude:   *flagExclude,
		Mapq:          *mapq,
		Parallelism:   *parallelism,
		MaxPoints:     *maxPoints,
		GenomeSize:    *genomeSize,
		Streaming:     *streaming,
		MemoryLimitMB: *memoryLimit,
		ShowZeros:     *showZeros,
		LogScale:      *logScale,
		OutPath:       *outPath,
		BinPath:       *binPath,
		PlotPath:      *plotPath,
		CraminoPath:   *craminoPath,
	}
	if err := coverage.Run(ctx, positionalArgs[0], &opts); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
