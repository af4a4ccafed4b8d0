// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package match

import "bytes"

// FindExact returns the start offset of every occurrence of pattern in ref,
// in ascending order.  Overlapping occurrences are all reported.  Bytes are
// compared literally: no case folding and no ambiguity codes.  An empty
// pattern matches nowhere.
func FindExact(ref, pattern []byte) []int {
	if len(pattern) == 0 || len(pattern) > len(ref) {
		return nil
	}
	var hits []int
	for off := 0; off+len(pattern) <= len(ref); {
		i := bytes.Index(ref[off:], pattern)
		if i < 0 {
			break
		}
		hits = append(hits, off+i)
		off += i + 1
	}
	return hits
}
