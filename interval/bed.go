package interval

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		// These simple loops beat the standard library string-split functions
		// when only the first few columns are wanted.
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// skippableLine returns true for lines that carry no interval data: blank
// lines, '#' comments, and BED "track"/"browser" header lines.
func skippableLine(curLine []byte) bool {
	trimmed := bytes.TrimLeft(curLine, " \t")
	if len(trimmed) == 0 || trimmed[0] == '#' {
		return true
	}
	return bytes.HasPrefix(trimmed, []byte("track")) || bytes.HasPrefix(trimmed, []byte("browser"))
}

// ScanEntries reads BED-style (chrom, start, end) lines from reader.  Entries
// are returned in input order, unvalidated against any reference list; the
// RegionSet constructors perform that validation.  Zero-length entries are
// kept so that a chromosome can be 'mentioned' without covering any base.
func ScanEntries(reader io.Reader) (entries []Entry, err error) {
	// Note that Scanner does not handle very long lines unless we specify an
	// adequate buffer size in advance; it does not auto-resize.
	// Shouldn't matter for BED files, though.
	scanner := bufio.NewScanner(reader)
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if skippableLine(curLine) {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken != 3 {
			err = regionErrorf("", 0, 0, lineIdx, "fewer tokens than expected")
			return
		}
		var parsedStart int
		if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			err = regionErrorf(string(tokens[0]), 0, 0, lineIdx, "unparseable start coordinate %q", tokens[1])
			return
		}
		if parsedStart < 0 {
			err = regionErrorf(string(tokens[0]), PosType(parsedStart), 0, lineIdx, "negative start coordinate")
			return
		}
		var parsedEnd int
		if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			err = regionErrorf(string(tokens[0]), PosType(parsedStart), 0, lineIdx, "unparseable end coordinate %q", tokens[2])
			return
		}
		if (parsedEnd < parsedStart) || (parsedEnd >= PosTypeMax) {
			err = regionErrorf(string(tokens[0]), PosType(parsedStart), PosType(parsedEnd), lineIdx, "invalid coordinate pair")
			return
		}
		entries = append(entries, Entry{
			ChrName: string(tokens[0]),
			Start0:  PosType(parsedStart),
			End:     PosType(parsedEnd),
		})
	}
	if err = scanner.Err(); err != nil {
		return
	}
	log.Debug.Printf("interval.ScanEntries: %d entries loaded", len(entries))
	return
}

// ScanEntriesFromPath is a wrapper for ScanEntries that takes a path instead
// of an io.Reader, transparently decompressing gzipped input.
func ScanEntriesFromPath(path string) (entries []Entry, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ScanEntries(reader)
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1] is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = regionErrorf("", 0, 0, 0, "empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.ChrName = region
		result.Start0 = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = regionErrorf("", 0, 0, 0, "empty contig ID")
		return
	}
	result.ChrName = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = regionErrorf(result.ChrName, 0, 0, 0, "position %v out of range", rangeStr)
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = regionErrorf(result.ChrName, 0, 0, 0, "position %v out of range", start1Str)
		return
	}
	var end0 int
	if end0, err = strconv.Atoi(endStr); err != nil {
		return
	}
	// Prohibit end0 == PosTypeMax so that interval arrays are guaranteed to
	// contain no repeats.
	if end0 <= start1 || end0 >= PosTypeMax {
		err = regionErrorf(result.ChrName, PosType(start1-1), PosType(end0), 0, "invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}
