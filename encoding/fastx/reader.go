// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package fastx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/OscarAspelin95/fasta-rs/encoding/fasta"
	"github.com/OscarAspelin95/fasta-rs/encoding/fastq"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// Record is one sequence read from FASTA or FASTQ input.
type Record struct {
	// ID is the record name: the header token up to the first space or
	// tab, without the leading '>' or '@'.
	ID string
	// Seq holds the sequence bytes, unchanged.
	Seq []byte
	// Qual is nil for FASTA input.
	Qual []byte
}

// Scanner is the record stream consumed by the amplicon driver.
type Scanner interface {
	// Scan reads the next record into rec, returning false at end of
	// input or on error.
	Scan(rec *Record) bool
	// Err returns the fatal error that stopped Scan, if any.
	Err() error
}

// Reader reads records from FASTA or FASTQ input.  Malformed records and
// records whose ID is not valid UTF-8 are logged and skipped.  Reader
// implements Scanner.
type Reader struct {
	format   Format
	fa       *fasta.Scanner
	fq       *fastq.Scanner
	read     fastq.Read
	faRec    fasta.Record
	label    string
	nInvalid int
	closers  []func(context.Context) error
}

// NewReader returns a Reader that parses r in the given format.  label
// prefixes log messages about skipped records.
func NewReader(r io.Reader, format Format, label string) *Reader {
	x := &Reader{format: format, label: label}
	switch format {
	case FASTQ:
		x.fq = fastq.NewScanner(r, fastq.ID|fastq.Seq|fastq.Qual)
		x.fq.Invalid = x.invalid
	default:
		x.format = FASTA
		x.fa = fasta.NewScanner(r)
		x.fa.Invalid = x.invalid
	}
	return x
}

func (x *Reader) invalid(err error) {
	x.nInvalid++
	log.Error.Printf("%s: skipping record: %v", x.label, err)
}

// Format returns the input format.
func (x *Reader) Format() Format { return x.format }

// NInvalid returns the number of records skipped so far.
func (x *Reader) NInvalid() int { return x.nInvalid }

// Scan implements Scanner.
func (x *Reader) Scan(rec *Record) bool {
	for {
		var id []byte
		if x.fq != nil {
			if !x.fq.Scan(&x.read) {
				return false
			}
			id = x.read.Name()
			rec.Seq, rec.Qual = x.read.Seq, x.read.Qual
		} else {
			if !x.fa.Scan(&x.faRec) {
				return false
			}
			id = gunsafe.StringToBytes(x.faRec.Name)
			rec.Seq, rec.Qual = x.faRec.Seq, nil
		}
		if !utf8.Valid(id) {
			x.invalid(errors.E(errors.Invalid, "identifier is not valid UTF-8"))
			continue
		}
		rec.ID = string(id)
		return true
	}
}

// Err implements Scanner.
func (x *Reader) Err() error {
	if x.fq != nil {
		return x.fq.Err()
	}
	return x.fa.Err()
}

// Close releases the underlying input.
func (x *Reader) Close(ctx context.Context) error {
	e := errors.Once{}
	for i := len(x.closers) - 1; i >= 0; i-- {
		e.Set(x.closers[i](ctx))
	}
	return e.Err()
}

// Open opens path for reading.  An empty path reads standard input, whose
// compression and format are detected from its leading bytes.  Otherwise
// the format comes from the extension, and a ".gz" suffix means gzip.
// Missing files yield errors of kind errors.NotExist.
func Open(ctx context.Context, path string) (*Reader, error) {
	if path == "" {
		return NewReaderAuto(os.Stdin, "stdin")
	}
	format, err := ValidatePath(path)
	if err != nil {
		return nil, err
	}
	if _, err := file.Stat(ctx, path); err != nil {
		return nil, errors.E(errors.NotExist, err, "open", path)
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open", path)
	}
	closers := []func(context.Context) error{in.Close}
	r := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			_ = in.Close(ctx)
			return nil, errors.E(err, "gzip", path)
		}
		closers = append(closers, func(context.Context) error { return gz.Close() })
		r = gz
	}
	x := NewReader(r, format, path)
	x.closers = closers
	return x, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// NewReaderAuto returns a Reader over r, transparently decompressing gzip
// data and choosing the format from the first non-blank byte: '>' for
// FASTA, '@' for FASTQ.  Empty input is read as FASTA.
func NewReaderAuto(r io.Reader, label string) (*Reader, error) {
	br := bufio.NewReader(r)
	var closers []func(context.Context) error
	if magic, _ := br.Peek(len(gzipMagic)); len(magic) == len(gzipMagic) &&
		magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.E(err, "gzip", label)
		}
		closers = append(closers, func(context.Context) error { return gz.Close() })
		br = bufio.NewReader(gz)
	}
	format, err := sniff(br)
	if err != nil {
		return nil, errors.E(err, label)
	}
	x := NewReader(br, format, label)
	x.closers = closers
	return x, nil
}

func sniff(br *bufio.Reader) (Format, error) {
	for n := 1; ; n++ {
		buf, err := br.Peek(n)
		if len(buf) < n {
			if err == io.EOF || err == bufio.ErrBufferFull {
				return FASTA, nil
			}
			return Unknown, errors.E(err, "reading input")
		}
		switch buf[n-1] {
		case ' ', '\t', '\r', '\n':
			continue
		case '>':
			return FASTA, nil
		case '@':
			return FASTQ, nil
		default:
			return Unknown, errors.E(errors.NotSupported,
				fmt.Sprintf("input is neither FASTA nor FASTQ: first byte is %q", buf[n-1]))
		}
	}
}
