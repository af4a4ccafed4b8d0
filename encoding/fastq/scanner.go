// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fastq contains a streaming FASTQ scanner.
package fastq

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

var (
	// ErrShort is wrapped by the error reported when a truncated FASTQ
	// record is encountered at end of input.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is wrapped by the errors reported for malformed FASTQ
	// records.
	ErrInvalid = errors.New("invalid FASTQ file")
)

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual []byte
}

// Name returns the ID without the leading '@' and without anything after
// the first space or tab.
func (r *Read) Name() []byte {
	id := r.ID
	if len(id) > 0 && id[0] == '@' {
		id = id[1:]
	}
	for i, c := range id {
		if c == ' ' || c == '\t' {
			return id[:i]
		}
	}
	return id
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Scanner validates that ID lines begin with "@", that line 3 begins
// with "+", and that sequence and quality have equal length.  A record
// failing validation is skipped and reported to Invalid; scanning then
// resumes at the next line beginning with "@".
type Scanner struct {
	// Invalid, if non-nil, is called once for each skipped record.
	Invalid func(error)

	b        *bufio.Scanner
	err      error
	fields   Field
	line     int
	nInvalid int
	// held is a line read while resynchronizing that must be
	// reconsidered as the next ID line.
	held     []byte
	haveHeld bool
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Unk causes the Read.Unk field to be filled
	Unk
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read. A typical value
// would be All or ID|Seq|Qual.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, bufferInitSize)
	return &Scanner{b: b, fields: fields}
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// I/O error or because the end of the stream was reached.  The filled
// fields are freshly allocated on every call.
func (f *Scanner) Scan(read *Read) bool {
	for f.err == nil {
		id, ok := f.next()
		if !ok {
			return false
		}
		if len(id) == 0 {
			continue
		}
		if id[0] != '@' {
			f.invalid(ErrInvalid, "line %d: ID line does not begin with '@'", f.line)
			f.resync()
			continue
		}
		idLine := f.line
		if f.fields&ID != 0 {
			read.ID = append(read.ID[:0:0], id...)
		}
		seq, ok := f.next()
		if !ok {
			f.invalid(ErrShort, "line %d: truncated record", idLine)
			return false
		}
		if f.fields&Seq != 0 {
			read.Seq = append(read.Seq[:0:0], seq...)
		}
		seqLen := len(seq)
		unk, ok := f.next()
		if !ok {
			f.invalid(ErrShort, "line %d: truncated record", idLine)
			return false
		}
		if len(unk) == 0 || unk[0] != '+' {
			f.invalid(ErrInvalid, "line %d: separator line does not begin with '+'", f.line)
			f.hold(unk)
			f.resync()
			continue
		}
		if f.fields&Unk != 0 {
			read.Unk = append(read.Unk[:0:0], unk...)
		}
		qual, ok := f.next()
		if !ok {
			f.invalid(ErrShort, "line %d: truncated record", idLine)
			return false
		}
		if len(qual) != seqLen {
			f.invalid(ErrInvalid, "line %d: quality length %d != sequence length %d", f.line, len(qual), seqLen)
			continue
		}
		if f.fields&Qual != 0 {
			read.Qual = append(read.Qual[:0:0], qual...)
		}
		return true
	}
	return false
}

// next returns the next line. The returned slice is valid until the
// following call.
func (f *Scanner) next() ([]byte, bool) {
	if f.haveHeld {
		f.haveHeld = false
		return f.held, true
	}
	if f.err != nil {
		return nil, false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		} else {
			f.err = errors.Wrap(f.err, "couldn't read FASTQ data")
		}
		return nil, false
	}
	f.line++
	return f.b.Bytes(), true
}

func (f *Scanner) hold(line []byte) {
	f.held = append(f.held[:0], line...)
	f.haveHeld = true
}

// resync skips lines up to, but not including, the next line beginning
// with '@'.
func (f *Scanner) resync() {
	for {
		line, ok := f.next()
		if !ok {
			return
		}
		if len(line) > 0 && line[0] == '@' {
			f.hold(line)
			return
		}
	}
}

func (f *Scanner) invalid(cause error, format string, args ...interface{}) {
	f.nInvalid++
	if f.Invalid != nil {
		f.Invalid(errors.Wrapf(cause, format, args...))
	}
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// NInvalid returns the number of records skipped so far.
func (f *Scanner) NInvalid() int { return f.nInvalid }
