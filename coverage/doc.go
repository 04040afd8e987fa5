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

// Package coverage computes per-position depth-of-coverage profiles from
// sorted, indexed BAM files.
//
// The analyzed portion of the genome (the whole genome by default, or the
// regions given by a BED file and/or chromosome-extent list) is partitioned
// into fixed-size chunks; worker goroutines accumulate per-chunk depth
// vectors and read-length counts independently, and an aggregator merges the
// chunk results back into dense per-chromosome profiles, verifying that the
// chunks exactly tile the analyzed regions.  Downstream consumers (adaptive
// binning, statistics, TSV/plot/QC outputs) live in the binning, stats, and
// output packages.
package coverage
