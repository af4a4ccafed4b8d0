// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package amplicon

import (
	"sort"

	"github.com/OscarAspelin95/fasta-rs/match"
	"github.com/OscarAspelin95/fasta-rs/primer"
	"github.com/cloudflare/ahocorasick"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// compiledPair is a primer pair prepared for searching.
type compiledPair struct {
	primer.Pair
	// fwd is the forward primer; rev is the reverse complement of the
	// reverse primer.
	fwd, rev []byte
	// Fuzzy mode only.
	fwdPat, revPat *match.Pattern
	k              int
	// Exact mode only: indices of fwd and rev in the prefilter dictionary.
	fwdKey, revKey int
}

// Searcher finds amplicons for a fixed list of primer pairs.  A Searcher is
// immutable once built and may be shared by concurrent goroutines.
type Searcher struct {
	typ   SearchType
	pairs []compiledPair
	// prefilter matches every distinct exact-mode primer pattern in one
	// pass; nil in fuzzy mode.
	prefilter *ahocorasick.Matcher
	nDict     int
}

// NewSearcher compiles pairs for the given search type.  Pairs must be
// valid; an invalid pair yields an error of kind errors.Invalid.
func NewSearcher(pairs []primer.Pair, typ SearchType) (*Searcher, error) {
	s := &Searcher{typ: typ, pairs: make([]compiledPair, len(pairs))}
	var (
		dict  [][]byte
		index = map[string]int{}
	)
	key := func(p []byte) int {
		if i, ok := index[string(p)]; ok {
			return i
		}
		index[string(p)] = len(dict)
		dict = append(dict, p)
		return len(dict) - 1
	}
	for i, p := range pairs {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		cp := compiledPair{
			Pair: p,
			fwd:  []byte(p.Forward),
			rev:  []byte(p.ReverseTarget()),
			k:    p.MaxMismatches(),
		}
		switch typ {
		case Exact:
			cp.fwdKey, cp.revKey = key(cp.fwd), key(cp.rev)
		case Fuzzy:
			var err error
			if cp.fwdPat, err = match.Compile(cp.fwd); err != nil {
				return nil, errors.E(err, "primer", p.Name)
			}
			if cp.revPat, err = match.Compile(cp.rev); err != nil {
				return nil, errors.E(err, "primer", p.Name)
			}
		default:
			return nil, errors.E(errors.Invalid, "unknown search type", typ.String())
		}
		log.Debug.Printf("primer %s: forward %s, reverse target %s, insert [%d, %d], %s search, %d mismatches",
			p.Name, cp.fwd, cp.rev, p.MinInsert, p.MaxInsert, typ, cp.k)
		s.pairs[i] = cp
	}
	if len(dict) > 0 {
		s.prefilter = ahocorasick.NewMatcher(dict)
		s.nDict = len(dict)
	}
	return s, nil
}

// NumPairs returns the number of primer pairs.
func (s *Searcher) NumPairs() int { return len(s.pairs) }

// Pair returns the i'th primer pair.
func (s *Searcher) Pair(i int) primer.Pair { return s.pairs[i].Pair }

// Search returns the amplicons of the i'th primer pair on seq.  Amplicons
// are ordered by Start, then End.
func (s *Searcher) Search(seq []byte, i int) []Amplicon {
	cp := &s.pairs[i]
	if s.typ == Fuzzy {
		return cp.searchFuzzy(seq)
	}
	return cp.searchExact(seq)
}

// SearchAll returns, for each primer pair in order, its amplicons on seq.
func (s *Searcher) SearchAll(seq []byte) [][]Amplicon {
	out := make([][]Amplicon, len(s.pairs))
	var present []bool
	if s.prefilter != nil {
		present = make([]bool, s.nDict)
		for _, i := range s.prefilter.MatchThreadSafe(seq) {
			present[i] = true
		}
	}
	for i := range s.pairs {
		cp := &s.pairs[i]
		if present != nil && !(present[cp.fwdKey] && present[cp.revKey]) {
			continue
		}
		out[i] = s.Search(seq, i)
	}
	return out
}

// amplicon builds the amplicon spanning seq[start:end], or returns false if
// end precedes start or the insert is outside the pair's window.
func (cp *compiledPair) amplicon(seq []byte, start, end int) (Amplicon, bool) {
	if end < start {
		return Amplicon{}, false
	}
	n := end - start
	if n < cp.MinInsert || n > cp.MaxInsert {
		return Amplicon{}, false
	}
	return Amplicon{
		Start:        start,
		End:          end,
		InsertLength: n,
		TotalLength:  len(cp.fwd) + n + len(cp.rev),
		Seq:          seq[start:end:end],
	}, true
}

// searchExact pairs every forward match with every downstream reverse match
// whose insert fits the window.
func (cp *compiledPair) searchExact(seq []byte) []Amplicon {
	fwd := match.FindExact(seq, cp.fwd)
	if len(fwd) == 0 {
		return nil
	}
	rev := match.FindExact(seq, cp.rev)
	var amps []Amplicon
	for _, f := range fwd {
		start := f + len(cp.fwd)
		for _, b := range rev {
			if b-start > cp.MaxInsert {
				break
			}
			if a, ok := cp.amplicon(seq, start, b); ok {
				amps = append(amps, a)
			}
		}
	}
	return amps
}

// site is one primer binding site: the best alignment among a run of
// adjacent accepted alignment ends.
type site struct {
	start, end, dist int
}

// findSites returns the binding sites of p on seq in ascending end order.
// Find reports a cluster of adjacent ends around each site; the cluster is
// reduced to its lowest-distance alignment, preferring the one whose span
// is closest to the pattern length, then the earliest.
func findSites(p *match.Pattern, seq []byte, k int) []site {
	hits := p.Find(seq, k)
	var sites []site
	for i := 0; i < len(hits); {
		j := i + 1
		minDist := hits[i].Dist
		for ; j < len(hits) && hits[j].End == hits[j-1].End+1; j++ {
			if hits[j].Dist < minDist {
				minDist = hits[j].Dist
			}
		}
		best := site{dist: -1}
		for _, h := range hits[i:j] {
			if h.Dist != minDist {
				continue
			}
			st := site{start: p.Start(seq, h), end: h.End, dist: h.Dist}
			if best.dist < 0 || absDiff(st.end-st.start, p.Len()) < absDiff(best.end-best.start, p.Len()) {
				best = st
			}
		}
		sites = append(sites, best)
		i = j
	}
	return sites
}

// searchFuzzy pairs each forward binding site with the nearest reverse
// binding site that starts at least MinInsert bases past it.  Each forward
// site yields at most one amplicon, so starts are unique.
func (cp *compiledPair) searchFuzzy(seq []byte) []Amplicon {
	fwd := findSites(cp.fwdPat, seq, cp.k)
	if len(fwd) == 0 {
		return nil
	}
	rev := findSites(cp.revPat, seq, cp.k)
	if len(rev) == 0 {
		return nil
	}
	starts := make([]int, len(rev))
	for i, r := range rev {
		starts[i] = r.start
	}
	sort.Ints(starts)
	starts = uniq(starts)

	var amps []Amplicon
	prev := -1
	for _, f := range fwd {
		s := f.end
		if s == prev {
			continue
		}
		prev = s
		i := sort.SearchInts(starts, s+cp.MinInsert)
		if i == len(starts) {
			continue
		}
		if a, ok := cp.amplicon(seq, s, starts[i]); ok {
			amps = append(amps, a)
		}
	}
	return amps
}

// uniq removes adjacent duplicates from a sorted slice in place.
func uniq(v []int) []int {
	if len(v) == 0 {
		return v
	}
	n := 1
	for _, x := range v[1:] {
		if x != v[n-1] {
			v[n] = x
			n++
		}
	}
	return v[:n]
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
