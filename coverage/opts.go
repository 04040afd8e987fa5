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

type Opts struct {
	// Commandline options.
	BedPath      string
	ChromBedPath string
	Region       string
	BamIndexPath string
	ChunkSize    int
	FlagExclude  int
	Mapq         int
	Parallelism  int
	MaxPoints    int
	GenomeSize   int64
	// Streaming forces the per-chromosome streaming path; MemoryLimitMB is
	// the input size beyond which that path kicks in on its own (0 disables
	// the heuristic).
	Streaming     bool
	MemoryLimitMB int64
	ShowZeros     bool
	LogScale      bool
	OutPath       string
	BinPath       string
	PlotPath      string
	CraminoPath   string
}

var DefaultOpts = Opts{
	ChunkSize:     10000,
	FlagExclude:   0xd04,
	Mapq:          0,
	Parallelism:   0,
	MaxPoints:     1000,
	GenomeSize:    0,
	Streaming:     false,
	MemoryLimitMB: 500,
	ShowZeros:     false,
	LogScale:      false,
	OutPath:       "coverage.tsv",
	BinPath:       "coverage.bins.tsv",
	PlotPath:      "coverage.plot.tsv",
	CraminoPath:   "",
}

// validateOpts rejects option values that cannot produce meaningful output.
// All rejections happen here, before the BAM file is even opened.
func validateOpts(opts *Opts) error {
	if opts.ChunkSize < 1 {
		return configErrorf("chunk size must be at least 1 (got %d)", opts.ChunkSize)
	}
	if opts.Parallelism < 0 {
		return configErrorf("parallelism must be nonnegative (got %d)", opts.Parallelism)
	}
	if opts.MaxPoints < 1 {
		return configErrorf("max points must be at least 1 (got %d)", opts.MaxPoints)
	}
	if opts.GenomeSize < 0 {
		return configErrorf("genome size must be nonnegative (got %d)", opts.GenomeSize)
	}
	if opts.MemoryLimitMB < 0 {
		return configErrorf("memory limit must be nonnegative (got %d)", opts.MemoryLimitMB)
	}
	if (opts.Mapq < 0) || (opts.Mapq > 255) {
		return configErrorf("mapq threshold must be in [0, 255] (got %d)", opts.Mapq)
	}
	if opts.OutPath == "" {
		return configErrorf("output path must be nonempty")
	}
	if (opts.Region != "") && (opts.BedPath != "") {
		return configErrorf("-region and -bed cannot be specified together")
	}
	return nil
}
