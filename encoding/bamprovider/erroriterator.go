package bamprovider

import (
	"github.com/grailbio/hts/sam"
)

// errorIterator yields no records and reports the stored error from Err and
// Close.  Providers hand it out when an iterator cannot even be constructed,
// e.g. for a degenerate position range.
type errorIterator struct {
	err error
}

// NewErrorIterator creates an Iterator that scans nothing and returns "err"
// in Err and Close.
func NewErrorIterator(err error) Iterator {
	return &errorIterator{err: err}
}

func (i *errorIterator) Scan() bool          { return false }
func (i *errorIterator) Record() *sam.Record { panic("Record called on an error iterator") }
func (i *errorIterator) Err() error          { return i.err }
func (i *errorIterator) Close() error        { return i.err }
