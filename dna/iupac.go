// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

// Canonical lists the four canonical bases in the order used by bitmask
// encodings throughout this module.
const Canonical = "ACGT"

// expansions[b] is the set of canonical bases the IUPAC letter b stands for,
// or "" if b is not an (uppercase) IUPAC nucleotide letter.
var expansions = [256]string{
	'A': "A", 'C': "C", 'G': "G", 'T': "T",
	'N': "ACGT",
	'R': "AG", 'Y': "CT", 'S': "GC", 'W': "AT",
	'K': "GT", 'M': "AC",
	'B': "CGT", 'D': "AGT", 'H': "ACT", 'V': "ACG",
}

// IsIUPAC reports whether b is an uppercase IUPAC nucleotide letter, i.e. one
// of the canonical bases or one of N,R,Y,S,W,K,M,B,D,H,V.
func IsIUPAC(b byte) bool {
	return expansions[b] != ""
}

// IsCanonical reports whether b is one of A, C, G, T.
func IsCanonical(b byte) bool {
	return b == 'A' || b == 'C' || b == 'G' || b == 'T'
}

// IsAmbiguous reports whether b is an IUPAC letter standing for more than one
// base.
func IsAmbiguous(b byte) bool {
	return len(expansions[b]) > 1
}

// Expand returns the canonical bases the IUPAC letter b stands for.  For a
// canonical base it returns the base itself; for any other byte it returns "".
func Expand(b byte) string {
	return expansions[b]
}

// Matches reports whether the pattern byte p accepts the reference byte r.
// Bytes compare equal when identical.  Otherwise p must be an ambiguity letter
// and r a canonical base within its expansion; softmasked or unknown reference
// bytes never satisfy an ambiguity class.
func Matches(p, r byte) bool {
	if p == r {
		return true
	}
	if !IsCanonical(r) || !IsAmbiguous(p) {
		return false
	}
	e := expansions[p]
	for i := 0; i < len(e); i++ {
		if e[i] == r {
			return true
		}
	}
	return false
}
