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
	"fmt"

	"github.com/grailbio/coverage/interval"
)

// ConfigError reports an invalid option value or combination.  It is always
// detected during validation, before any parallel work starts.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "coverage: invalid configuration: " + e.Msg
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// IoError wraps a failure to read or write a file, carrying the path of the
// file involved.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("coverage: %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// AggregationError reports a violated chunk-tiling invariant: a gap,
// overlap, or unexpected span among the accumulated chunk results.  It is
// always fatal; a profile assembled from a broken tiling would be silently
// wrong.
type AggregationError struct {
	Chrom string
	Start interval.PosType
	End   interval.PosType
	Msg   string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("coverage: %s:%d-%d: %s", e.Chrom, e.Start, e.End, e.Msg)
}

func aggregationErrorf(chrom string, start, end interval.PosType, format string, args ...interface{}) error {
	return &AggregationError{
		Chrom: chrom,
		Start: start,
		End:   end,
		Msg:   fmt.Sprintf(format, args...),
	}
}
