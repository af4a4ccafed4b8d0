// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package match

import (
	"fmt"

	"github.com/OscarAspelin95/fasta-rs/dna"
	"github.com/grailbio/base/errors"
)

// MaxPatternLen is the longest pattern Compile accepts: one bit per pattern
// position in a 64-bit word.
const MaxPatternLen = 64

// Hit is one accepted alignment end reported by Pattern.Find.
type Hit struct {
	// End is the exclusive end offset of the alignment in the reference, i.e.
	// the alignment covers ref[start:End] for some start.
	End int
	// Dist is the edit distance of the best alignment ending at End.
	Dist int
}

// Pattern is a compiled primer pattern.
type Pattern struct {
	seq []byte
	// peq[c] has bit i set iff pattern position i accepts reference byte c.
	peq  [256]uint64
	last uint64 // bit of the last pattern position
}

// Compile builds a Pattern for seq.  Each IUPAC ambiguity letter in seq
// accepts every canonical base in its expansion; every other byte accepts
// only itself.  seq must hold between 1 and MaxPatternLen bytes.
func Compile(seq []byte) (*Pattern, error) {
	m := len(seq)
	if m == 0 {
		return nil, errors.E(errors.Invalid, "match: empty pattern")
	}
	if m > MaxPatternLen {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("match: pattern %q has length %d, max %d", seq, m, MaxPatternLen))
	}
	p := &Pattern{
		seq:  append([]byte(nil), seq...),
		last: uint64(1) << uint(m-1),
	}
	for i, c := range seq {
		bit := uint64(1) << uint(i)
		p.peq[c] |= bit
		if dna.IsAmbiguous(c) {
			e := dna.Expand(c)
			for j := 0; j < len(e); j++ {
				p.peq[e[j]] |= bit
			}
		}
	}
	return p, nil
}

// Len returns the pattern length.
func (p *Pattern) Len() int { return len(p.seq) }

// String returns the pattern bytes.
func (p *Pattern) String() string { return string(p.seq) }

// Find scans ref and returns, in ascending End order, every reference
// position at which some alignment of the whole pattern against a substring
// of ref ending there has edit distance at most k.  Alignments clustered on
// the same site are all reported.
func (p *Pattern) Find(ref []byte, k int) []Hit {
	var (
		hits  []Hit
		pv    = ^uint64(0)
		mv    uint64
		score = len(p.seq)
	)
	for i, c := range ref {
		eq := p.peq[c]
		xv := eq | mv
		xh := (((eq & pv) + pv) ^ pv) | eq
		ph := mv | ^(xh | pv)
		mh := pv & xh
		if ph&p.last != 0 {
			score++
		} else if mh&p.last != 0 {
			score--
		}
		// No carry into bit 0: a match may begin anywhere in ref.
		ph <<= 1
		mh <<= 1
		pv = mh | ^(xv | ph)
		mv = ph & xv
		if score <= k {
			hits = append(hits, Hit{End: i + 1, Dist: score})
		}
	}
	return hits
}
