// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package amplicon finds in-silico PCR products in sequence records.
//
// An amplicon is the stretch of a reference between a forward-primer match
// and a downstream match of the reverse complement of the reverse primer,
// whose length lies within the pair's insert window.  Primer bases are not
// part of the reported sequence.
//
// Exact mode compares primer bytes literally.  Fuzzy mode accepts
// alignments within the pair's edit-distance budget, with IUPAC ambiguity
// letters in primers matching any base in their expansion.
package amplicon

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// SearchType selects how primers are matched against a reference.
type SearchType int

const (
	// Exact mode requires literal primer matches.
	Exact SearchType = iota
	// Fuzzy mode allows up to primer.Pair.MaxMismatches edits per primer.
	Fuzzy
)

func (t SearchType) String() string {
	switch t {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	}
	return fmt.Sprintf("SearchType(%d)", int(t))
}

// ParseSearchType parses "exact" or "fuzzy".
func ParseSearchType(s string) (SearchType, error) {
	switch strings.ToLower(s) {
	case "exact":
		return Exact, nil
	case "fuzzy":
		return Fuzzy, nil
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown search type %q, want exact or fuzzy", s))
}

// Amplicon is one PCR product on a reference.
type Amplicon struct {
	// Start is the offset just past the forward-primer match.
	Start int
	// End is the offset where the reverse-primer match begins.
	End int
	// InsertLength is End-Start.
	InsertLength int
	// TotalLength is InsertLength plus both primer lengths.
	TotalLength int
	// Seq is reference[Start:End].  It aliases the reference.
	Seq []byte
}
