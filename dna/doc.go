// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dna provides byte-level helpers for ASCII nucleotide sequences:
// IUPAC ambiguity classes and reverse complementation.
//
// Canonical bases are the uppercase letters A, C, G and T.  Lowercase
// (softmasked) bytes and any byte outside the IUPAC alphabet are never
// members of an ambiguity class.
package dna
