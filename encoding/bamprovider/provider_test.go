package bamprovider_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/grailbio/coverage/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func newRecord(name string, ref *sam.Reference, pos, seqLen int) *sam.Record {
	return &sam.Record{
		Name:  name,
		Ref:   ref,
		Pos:   pos,
		Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, seqLen)},
		Seq:   sam.NewSeq(bytes.Repeat([]byte{'A'}, seqLen)),
	}
}

func scanNames(iter bamprovider.Iterator) []string {
	var names []string
	for iter.Scan() {
		names = append(names, iter.Record().Name)
	}
	return names
}

func TestFakeProviderOverlapSemantics(t *testing.T) {
	ref1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	ref2, err := sam.NewReference("chr2", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref1, ref2})
	assert.NoError(t, err)

	provider := bamprovider.NewFakeProvider(header, []*sam.Record{
		newRecord("before", ref1, 0, 10),    // [0, 10): ends at range start
		newRecord("straddle", ref1, 5, 10),  // [5, 15): reaches into the range
		newRecord("inside", ref1, 20, 5),    // [20, 25)
		newRecord("atLimit", ref1, 50, 10),  // starts at range limit
		newRecord("otherRef", ref2, 20, 10), // wrong chromosome
	})

	gotHeader, err := provider.GetHeader()
	assert.NoError(t, err)
	expect.EQ(t, gotHeader, header)

	iter := provider.NewIterator(ref1, 10, 50)
	expect.EQ(t, scanNames(iter), []string{"straddle", "inside"})
	expect.NoError(t, iter.Close())

	iter = provider.NewIterator(ref2, 0, 1000)
	expect.EQ(t, scanNames(iter), []string{"otherRef"})
	expect.NoError(t, iter.Close())

	expect.NoError(t, provider.Close())
}

func TestErrorIterator(t *testing.T) {
	iter := bamprovider.NewErrorIterator(io.ErrUnexpectedEOF)
	expect.False(t, iter.Scan())
	expect.EQ(t, iter.Err(), io.ErrUnexpectedEOF)
	expect.EQ(t, iter.Close(), io.ErrUnexpectedEOF)
}

func TestBAMProviderRejectsDegenerateRange(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	// A degenerate range fails before any file is touched, so even a
	// nonexistent path never surfaces an open error here.
	provider := &bamprovider.BAMProvider{Path: "/nonexistent/sample.bam"}
	for _, span := range [][2]int{{50, 50}, {60, 50}, {-1, 50}} {
		iter := provider.NewIterator(ref, span[0], span[1])
		expect.False(t, iter.Scan(), "span=%v", span)
		expect.True(t, iter.Err() != nil, "span=%v", span)
		expect.True(t, iter.Close() != nil, "span=%v", span)
	}
	expect.NoError(t, provider.Close())
}
