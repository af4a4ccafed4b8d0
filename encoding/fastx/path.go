// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fastx reads FASTA and FASTQ input through one record interface,
// and creates the output sinks that amplicon rows are written to.
package fastx

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// Format identifies a sequence file format.
type Format int

const (
	// Unknown is the zero Format.
	Unknown Format = iota
	// FASTA records have a '>' header and sequence lines.
	FASTA
	// FASTQ records have '@' ID, sequence, '+' and quality lines.
	FASTQ
)

func (f Format) String() string {
	switch f {
	case FASTA:
		return "fasta"
	case FASTQ:
		return "fastq"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

var extensions = map[string]Format{
	".fasta": FASTA,
	".fa":    FASTA,
	".fna":   FASTA,
	".fsa":   FASTA,
	".fastq": FASTQ,
	".fq":    FASTQ,
}

// ValidatePath returns the format implied by path's extension.  A trailing
// ".gz" is ignored.  Unrecognized extensions yield an error of kind
// errors.NotSupported.
func ValidatePath(path string) (Format, error) {
	base := strings.TrimSuffix(path, ".gz")
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		if f, ok := extensions[strings.ToLower(base[i:])]; ok {
			return f, nil
		}
	}
	return Unknown, errors.E(errors.NotSupported, fmt.Sprintf("%s: invalid file extension, want one of "+
		".fasta .fa .fna .fsa .fastq .fq, optionally followed by .gz", path))
}
