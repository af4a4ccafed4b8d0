// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package match

import (
	"github.com/OscarAspelin95/fasta-rs/dna"
)

// Start recovers the start offset of the alignment reported by h, so that the
// pattern aligns to ref[Start(ref, h):h.End] with distance h.Dist.
//
// The alignment is recomputed backwards from h.End over a window of at most
// Len()+h.Dist bytes.  When several starts reach the minimum distance, the one
// whose span is closest to Len() wins (substitutions over indels), then the
// larger start.
func (p *Pattern) Start(ref []byte, h Hit) int {
	m := len(p.seq)
	w := m + h.Dist
	if w > h.End {
		w = h.End
	}
	// prev[j], cur[j]: distance between the last i pattern bytes and the j
	// reference bytes ending at h.End.
	prev := make([]int, w+1)
	cur := make([]int, w+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		pc := p.seq[m-i]
		cur[0] = i
		for j := 1; j <= w; j++ {
			d := prev[j-1]
			if !dna.Matches(pc, ref[h.End-j]) {
				d++
			}
			if v := prev[j] + 1; v < d {
				d = v
			}
			if v := cur[j-1] + 1; v < d {
				d = v
			}
			cur[j] = d
		}
		prev, cur = cur, prev
	}
	span := 0
	for j := 1; j <= w; j++ {
		switch {
		case prev[j] < prev[span]:
			span = j
		case prev[j] == prev[span] && absDiff(j, m) < absDiff(span, m):
			span = j
		}
	}
	return h.End - span
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
