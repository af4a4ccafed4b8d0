// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package amplicon

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OscarAspelin95/fasta-rs/encoding/fasta"
	"github.com/OscarAspelin95/fasta-rs/primer"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	gunsafe "github.com/grailbio/base/unsafe"
)

// Format selects the output row encoding.
type Format int

const (
	// TSV writes a header line, then one tab-separated row per amplicon.
	TSV Format = iota
	// FASTA writes one ">SEQID|PRIMER|START-END" record per amplicon.
	FASTA
)

func (f Format) String() string {
	switch f {
	case TSV:
		return "tsv"
	case FASTA:
		return "fasta"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses "tsv" or "fasta".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "tsv":
		return TSV, nil
	case "fasta":
		return FASTA, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown output format %q, want tsv or fasta", s))
}

// Header is the first line of TSV output.
const Header = "sequence_id\tprimer_name\tstart\tend\tinsert_length\tactual_length\tamplicon\n"

// writeHeader writes the format's preamble, if any.
func writeHeader(w io.Writer, f Format) error {
	if f != TSV {
		return nil
	}
	_, err := io.WriteString(w, Header)
	return err
}

// rowEncoder serializes the amplicons of one record into an owned buffer.
// Each worker owns one rowEncoder.
type rowEncoder interface {
	// add encodes the amplicons of one primer pair.
	add(id string, p *primer.Pair, amps []Amplicon) error
	// take returns the bytes encoded since the last call.
	take() ([]byte, error)
}

func newRowEncoder(f Format) rowEncoder {
	if f == FASTA {
		e := &fastaEncoder{}
		e.w = fasta.NewWriter(&e.buf)
		return e
	}
	e := &tsvEncoder{}
	e.w = tsv.NewWriter(&e.buf)
	return e
}

type tsvEncoder struct {
	buf bytes.Buffer
	w   *tsv.Writer
}

func (e *tsvEncoder) add(id string, p *primer.Pair, amps []Amplicon) error {
	for _, a := range amps {
		e.w.WriteString(id)
		e.w.WriteString(p.Name)
		e.w.WriteInt64(int64(a.Start))
		e.w.WriteInt64(int64(a.End))
		e.w.WriteInt64(int64(a.InsertLength))
		e.w.WriteInt64(int64(a.TotalLength))
		e.w.WriteString(gunsafe.BytesToString(a.Seq))
		if err := e.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

func (e *tsvEncoder) take() ([]byte, error) {
	if err := e.w.Flush(); err != nil {
		return nil, err
	}
	return takeBuffer(&e.buf), nil
}

type fastaEncoder struct {
	buf  bytes.Buffer
	w    *fasta.Writer
	name []byte
}

func (e *fastaEncoder) add(id string, p *primer.Pair, amps []Amplicon) error {
	for _, a := range amps {
		e.name = append(e.name[:0], id...)
		e.name = append(e.name, '|')
		e.name = append(e.name, p.Name...)
		e.name = append(e.name, '|')
		e.name = strconv.AppendInt(e.name, int64(a.Start), 10)
		e.name = append(e.name, '-')
		e.name = strconv.AppendInt(e.name, int64(a.End), 10)
		if err := e.w.Write(gunsafe.BytesToString(e.name), a.Seq); err != nil {
			return err
		}
	}
	return nil
}

func (e *fastaEncoder) take() ([]byte, error) {
	return takeBuffer(&e.buf), nil
}

// takeBuffer copies out and resets buf.  It returns nil for an empty buffer.
func takeBuffer(buf *bytes.Buffer) []byte {
	if buf.Len() == 0 {
		return nil
	}
	b := append([]byte(nil), buf.Bytes()...)
	buf.Reset()
	return b
}
