// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package primer defines primer pairs and reads primer definition tables.
//
// A primer table is tab-separated text with one pair per line:
//
//   name <TAB> forward <TAB> reverse <TAB> min_insert <TAB> max_insert [<TAB> mismatches]
//
// Both primers are written 5'->3'; the reverse primer is stored as supplied,
// not reverse-complemented.  Blank lines and lines starting with '#' are
// ignored.
package primer

import (
	"fmt"

	"github.com/OscarAspelin95/fasta-rs/dna"
	"github.com/OscarAspelin95/fasta-rs/match"
	"github.com/grailbio/base/errors"
)

// DefaultMismatches is the edit-distance budget used in fuzzy mode when a
// pair does not specify one.
const DefaultMismatches = 1

// UnsetMismatches marks a Pair whose table line has no mismatches column.
const UnsetMismatches = -1

// Pair is one in-silico PCR experiment.
type Pair struct {
	Name string
	// Forward and Reverse are primer sequences, 5'->3', each 1 to
	// match.MaxPatternLen uppercase IUPAC letters.
	Forward, Reverse string
	// MinInsert and MaxInsert bound the amplicon length excluding both
	// primers, inclusive.
	MinInsert, MaxInsert int
	// Mismatches is the fuzzy-mode edit-distance budget, or UnsetMismatches.
	Mismatches int
}

// MaxMismatches returns the edit-distance budget for the pair.
func (p Pair) MaxMismatches() int {
	if p.Mismatches == UnsetMismatches {
		return DefaultMismatches
	}
	return p.Mismatches
}

// ReverseTarget returns the reverse complement of the reverse primer, the
// bytes expected on the leading strand of the reference.
func (p Pair) ReverseTarget() string {
	return dna.ReverseCompString(p.Reverse)
}

// Validate checks the structural invariants of p.  Errors have kind
// errors.Invalid.
func (p Pair) Validate() error {
	if p.Name == "" {
		return errors.E(errors.Invalid, "primer: empty name")
	}
	if err := validateSeq(p.Name, "forward", p.Forward); err != nil {
		return err
	}
	if err := validateSeq(p.Name, "reverse", p.Reverse); err != nil {
		return err
	}
	if p.MinInsert < 0 || p.MaxInsert < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("primer %s: negative insert bound [%d, %d]", p.Name, p.MinInsert, p.MaxInsert))
	}
	if p.MinInsert > p.MaxInsert {
		return errors.E(errors.Invalid, fmt.Sprintf("primer %s: min_insert %d > max_insert %d", p.Name, p.MinInsert, p.MaxInsert))
	}
	if p.Mismatches < UnsetMismatches {
		return errors.E(errors.Invalid, fmt.Sprintf("primer %s: negative mismatches %d", p.Name, p.Mismatches))
	}
	return nil
}

func validateSeq(name, which, seq string) error {
	if len(seq) == 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("primer %s: empty %s primer", name, which))
	}
	if len(seq) > match.MaxPatternLen {
		return errors.E(errors.Invalid, fmt.Sprintf("primer %s: %s primer has length %d, max %d",
			name, which, len(seq), match.MaxPatternLen))
	}
	for i := 0; i < len(seq); i++ {
		if !dna.IsIUPAC(seq[i]) {
			return errors.E(errors.Invalid, fmt.Sprintf("primer %s: %s primer %q has non-IUPAC byte %q at %d",
				name, which, seq, seq[i], i))
		}
	}
	return nil
}
