// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package match locates primer patterns in nucleotide sequences.
//
// FindExact reports literal occurrences.  Pattern, built by Compile,
// implements Myers' bit-parallel approximate matcher (G. Myers, "A fast
// bit-vector algorithm for approximate string matching based on dynamic
// programming", JACM 1999) for patterns of up to 64 bytes, with IUPAC
// ambiguity letters in the pattern treated as character classes.
//
// A compiled Pattern is immutable; the scanning state lives on the stack of
// each Find call, so one Pattern may be shared by any number of goroutines.
package match
