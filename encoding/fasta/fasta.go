// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fasta contains code for streaming FASTA files.  Briefly, FASTA
// files consist of a number of named sequences that may be interrupted by
// newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces and tabs immediately after '>'.  Any text appearing after a space is
// ignored.  For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 // 1 MB
)

// ErrInvalid is wrapped by the errors passed to Scanner.Invalid.
var ErrInvalid = errors.New("invalid FASTA record")

// A Record is one named FASTA sequence.
type Record struct {
	// Name is the header token up to the first space or tab, without '>'.
	Name string
	// Seq is the concatenation of the record's sequence lines, with line
	// terminators removed.  Bytes are passed through unchanged.
	Seq []byte
}

// Scanner reads FASTA records one at a time.  Scanners are not threadsafe.
//
// Malformed input is skipped, not fatal: sequence lines before the first
// header, and records with an empty name, are dropped and reported to
// Invalid.  Err returns only I/O errors.
type Scanner struct {
	// Invalid, if non-nil, is called once for each skipped record.
	Invalid func(error)

	r        *bufio.Reader
	err      error
	line     int
	pending  []byte // header of the next record, not including '>'
	havePend bool
	nInvalid int
}

// NewScanner constructs a new Scanner that reads FASTA data from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, bufferInitSize)}
}

// readLine returns the next line with its terminator and any trailing '\r'
// removed.  ok is false at end of input or on error.
func (s *Scanner) readLine() (line []byte, ok bool) {
	if s.err != nil {
		return nil, false
	}
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			s.err = errors.Wrap(err, "couldn't read FASTA data")
			return nil, false
		}
		s.err = io.EOF
		if len(line) == 0 {
			return nil, false
		}
	}
	s.line++
	line = bytes.TrimRight(line, "\r\n")
	return line, true
}

func (s *Scanner) invalid(format string, args ...interface{}) {
	s.nInvalid++
	if s.Invalid != nil {
		s.Invalid(errors.Wrapf(ErrInvalid, format, args...))
	}
}

// headerName extracts the record name from a header line without '>'.
func headerName(hdr []byte) string {
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		hdr = hdr[:i]
	}
	return string(hdr)
}

// Scan reads the next record into rec.  Scan returns false once input is
// exhausted or an I/O error occurs; the caller should then check Err.
// rec.Seq is freshly allocated on every call.
func (s *Scanner) Scan(rec *Record) bool {
	for {
		if !s.havePend {
			if !s.seekHeader() {
				return false
			}
		}
		s.havePend = false
		hdrLine := s.line
		name := headerName(s.pending)
		var seq []byte
		for {
			line, ok := s.readLine()
			if !ok {
				break
			}
			if len(line) > 0 && line[0] == '>' {
				s.pending = append(s.pending[:0], line[1:]...)
				s.havePend = true
				break
			}
			seq = append(seq, line...)
		}
		if name == "" {
			s.invalid("line %d: empty sequence name", hdrLine)
			continue
		}
		rec.Name = name
		rec.Seq = seq
		return true
	}
}

// seekHeader skips to the next header line, reporting any data found before
// it.
func (s *Scanner) seekHeader() bool {
	orphan := false
	for {
		line, ok := s.readLine()
		if !ok {
			if orphan {
				s.invalid("sequence data before first header")
			}
			return false
		}
		if len(line) > 0 && line[0] == '>' {
			if orphan {
				s.invalid("line %d: sequence data before first header", s.line)
			}
			s.pending = append(s.pending[:0], line[1:]...)
			return true
		}
		if len(bytes.TrimSpace(line)) > 0 {
			orphan = true
		}
	}
}

// Err returns the I/O error that stopped the scanner, if any.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// NInvalid returns the number of records skipped so far.
func (s *Scanner) NInvalid() int { return s.nInvalid }

// Writer writes FASTA records with the whole sequence on one line.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTA writer that writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes a record ">name\nseq\n".  Once a write fails, every later
// call returns the same error.
func (w *Writer) Write(name string, seq []byte) error {
	w.writeString(">")
	w.writeString(name)
	w.writeString("\n")
	if w.err == nil {
		_, w.err = w.w.Write(seq)
	}
	w.writeString("\n")
	return w.err
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}
