// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

import "fmt"

// complementTable maps every uppercase IUPAC letter to its complement.  Zero
// marks bytes without a defined complement.
var complementTable = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A',
	'R': 'Y', 'Y': 'R',
	'S': 'S', 'W': 'W',
	'K': 'M', 'M': 'K',
	'B': 'V', 'V': 'B',
	'D': 'H', 'H': 'D',
	'N': 'N',
}

// Complement returns the complement of the IUPAC letter b, and false if b has
// no complement.
func Complement(b byte) (byte, bool) {
	c := complementTable[b]
	return c, c != 0
}

func complementOrPanic(b byte) byte {
	c := complementTable[b]
	if c == 0 {
		panic(fmt.Sprintf("dna: cannot complement byte %q", b))
	}
	return c
}

// ReverseComp writes the reverse complement of src[] to dst[].  Every byte of
// src must be an uppercase IUPAC letter; ambiguity letters map pairwise
// (R<->Y, K<->M, B<->V, D<->H, while S, W and N are self-complementary).
//
// It panics if len(dst) != len(src) or src contains a byte outside the IUPAC
// alphabet.
func ReverseComp(dst, src []byte) {
	nByte := len(src)
	if len(dst) != nByte {
		panic("ReverseComp requires len(dst) == len(src).")
	}
	for idx, invIdx := 0, nByte-1; idx != nByte; idx, invIdx = idx+1, invIdx-1 {
		dst[idx] = complementOrPanic(src[invIdx])
	}
}

// ReverseCompInplace reverse-complements seq[] in place.  It has the same
// input requirements as ReverseComp.
func ReverseCompInplace(seq []byte) {
	nByte := len(seq)
	nByteDiv2 := nByte >> 1
	for idx, invIdx := 0, nByte-1; idx != nByteDiv2; idx, invIdx = idx+1, invIdx-1 {
		seq[idx], seq[invIdx] = complementOrPanic(seq[invIdx]), complementOrPanic(seq[idx])
	}
	if nByte&1 == 1 {
		seq[nByteDiv2] = complementOrPanic(seq[nByteDiv2])
	}
}

// ReverseCompBytes returns a newly allocated reverse complement of src.
func ReverseCompBytes(src []byte) []byte {
	dst := make([]byte, len(src))
	ReverseComp(dst, src)
	return dst
}

// ReverseCompString is the string counterpart of ReverseCompBytes.
func ReverseCompString(s string) string {
	return string(ReverseCompBytes([]byte(s)))
}
