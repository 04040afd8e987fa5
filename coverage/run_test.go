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
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/coverage/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

// testGenome returns a two-chromosome fake provider.  The header lists chr10
// before chr2, so outputs exercise the natural reordering.
func testGenome(t *testing.T) bamprovider.Provider {
	ref10, err := sam.NewReference("chr10", "", "", 4, nil, nil)
	assert.NoError(t, err)
	ref2, err := sam.NewReference("chr2", "", "", 6, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref10, ref2})
	assert.NoError(t, err)
	return bamprovider.NewFakeProvider(header, []*sam.Record{
		newTestRecord("r3", ref10, 1, 2, 0, 60), // chr10 [1, 3)
		newTestRecord("r1", ref2, 0, 3, 0, 60),  // chr2 [0, 3)
		newTestRecord("r2", ref2, 2, 3, 0, 60),  // chr2 [2, 5)
	})
}

func testRunOpts(dir, prefix string) Opts {
	opts := DefaultOpts
	opts.ChunkSize = 2
	opts.Parallelism = 2
	opts.OutPath = filepath.Join(dir, prefix+".tsv")
	opts.BinPath = filepath.Join(dir, prefix+".bins.tsv")
	opts.PlotPath = filepath.Join(dir, prefix+".plot.tsv")
	opts.CraminoPath = filepath.Join(dir, prefix+".cramino.txt")
	return opts
}

func readRunFile(t *testing.T, path string) string {
	body, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(body)
}

func TestRunEndToEnd(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	opts := testRunOpts(tmpdir, "inmem")
	assert.NoError(t, run(ctx, testGenome(t), "/nonexistent/sample.bam", &opts))
	expect.EQ(t, readRunFile(t, opts.OutPath),
		"#chromosome\tposition\tcount\n"+
			"chr2\t1\t1\n"+
			"chr2\t2\t1\n"+
			"chr2\t3\t2\n"+
			"chr2\t4\t1\n"+
			"chr2\t5\t1\n"+
			"chr10\t2\t1\n"+
			"chr10\t3\t1\n")
	for _, path := range []string{opts.BinPath, opts.PlotPath, opts.CraminoPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}

func TestRunStreamingMatchesInMemory(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	inmem := testRunOpts(tmpdir, "inmem")
	assert.NoError(t, run(ctx, testGenome(t), "/nonexistent/sample.bam", &inmem))
	streamed := testRunOpts(tmpdir, "streamed")
	streamed.Streaming = true
	assert.NoError(t, run(ctx, testGenome(t), "/nonexistent/sample.bam", &streamed))

	expect.EQ(t, readRunFile(t, streamed.OutPath), readRunFile(t, inmem.OutPath))
	expect.EQ(t, readRunFile(t, streamed.BinPath), readRunFile(t, inmem.BinPath))
	expect.EQ(t, readRunFile(t, streamed.PlotPath), readRunFile(t, inmem.PlotPath))
	expect.EQ(t, readRunFile(t, streamed.CraminoPath), readRunFile(t, inmem.CraminoPath))
}

// failingProvider delegates to an inner provider except on one chromosome,
// where every iterator fails.
type failingProvider struct {
	bamprovider.Provider
	failRefID int
	failErr   error
}

func (p *failingProvider) NewIterator(ref *sam.Reference, start, limit int) bamprovider.Iterator {
	if ref.ID() == p.failRefID {
		return bamprovider.NewErrorIterator(p.failErr)
	}
	return p.Provider.NewIterator(ref, start, limit)
}

func TestRunAbortsOnIteratorError(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	ref1, err := sam.NewReference("chr1", "", "", 50, nil, nil)
	assert.NoError(t, err)
	ref2, err := sam.NewReference("chr2", "", "", 50, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref1, ref2})
	assert.NoError(t, err)
	base := bamprovider.NewFakeProvider(header, []*sam.Record{
		newTestRecord("r1", ref1, 0, 10, 0, 60),
	})
	provider := &failingProvider{Provider: base, failRefID: ref2.ID(), failErr: io.ErrUnexpectedEOF}

	for _, streaming := range []bool{false, true} {
		prefix := "inmem"
		if streaming {
			prefix = "streamed"
		}
		opts := testRunOpts(tmpdir, prefix)
		opts.Streaming = streaming
		err := run(ctx, provider, "/nonexistent/sample.bam", &opts)
		if err == nil {
			t.Fatalf("streaming=%v: expected error", streaming)
		}
		if _, ok := err.(*IoError); !ok {
			t.Fatalf("streaming=%v: got %T, want *IoError", streaming, err)
		}
		// The failed run must not leave output files behind, not even a
		// partially streamed one.
		for _, path := range []string{opts.OutPath, opts.BinPath, opts.PlotPath, opts.CraminoPath} {
			if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
				t.Errorf("streaming=%v: %s left behind (stat: %v)", streaming, path, statErr)
			}
		}
	}
}
