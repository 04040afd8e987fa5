package interval

import (
	"fmt"
	"math"
)

// PosType is the coordinate type used throughout this package.
type PosType int32

// PosTypeMax is the maximum value representable by a PosType.
const PosTypeMax = math.MaxInt32

// Ref describes one reference sequence. Refs are immutable once loaded; the
// natural rank of a Ref is its position in the slice handed to the RegionSet
// constructors, which mirrors BAM header order.
type Ref struct {
	Name string
	Len  PosType
}

// Entry represents a single half-open, 0-based interval on a named
// chromosome.
type Entry struct {
	ChrName string
	Start0  PosType
	End     PosType
}

// RegionError reports a malformed or unresolvable interval. Line is the
// 1-based input line number when the entry came from a file, and zero
// otherwise.
type RegionError struct {
	ChrName string
	Start   PosType
	End     PosType
	Line    int
	Msg     string
}

func (e *RegionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("interval: line %d (%s:%d-%d): %s", e.Line, e.ChrName, e.Start, e.End, e.Msg)
	}
	if e.ChrName != "" {
		return fmt.Sprintf("interval: %s:%d-%d: %s", e.ChrName, e.Start, e.End, e.Msg)
	}
	return "interval: " + e.Msg
}

func regionErrorf(chrName string, start, end PosType, line int, format string, args ...interface{}) error {
	return &RegionError{
		ChrName: chrName,
		Start:   start,
		End:     end,
		Line:    line,
		Msg:     fmt.Sprintf(format, args...),
	}
}
