// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package fastq

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fq = `@NB500956:89:HW2FHBGX2:1:11101:25648:1069 1:N:0:ATCACG
ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC
+
AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEE#EEEE#E#EEEEE#EEE#EEEAEE#A#####E#E###E
@NB500956:89:HW2FHBGX2:1:11101:13871:1070 1:N:0:ATCACG
CTCAACTCTGAGNCAGACAGAAATACNTTTNNTNTGAGTTACANCNTTCTTTTTCNACATATNCNNNNNTNGNNNT
+
AAAAAEEEEEEE#EEEEEEEEEEEEE#EEE##E#EEEEEEEEE#E#EEEEEEEEE#EAEEEE#A#####E#A###E
@NB500956:89:HW2FHBGX2:1:11101:9975:1070 1:N:0:ATCACG
GAGTAACCACGTNCCCATGGCCACAGNTGANNGNGTCACACCTNANCCGGGAGAGNCAATCCNGNNNNNGNANNNC
+
AAAAAEEEEEEE#EEEEEEEEEAEEE#EEA##E#EEEEEEEE<#E#<EEEEEEEE#<EEEA/#/#####A#E###A
@NB500956:89:HW2FHBGX2:1:11101:20247:1070 1:N:0:ATCACG
GATCGGAAGAGCNCACGTCTGAACTCNAGTNNCNTCCCGATCTNGNATGCCGTCTNCTGCTTNANNNNNANANNNG
+
AAAAAEEEEEEE#EEEEEEEEEEEEE#AEE##E#A////6AE<#E#EEEEEEEEA#A/EE/E#E#####/#E###E
@NB500956:89:HW2FHBGX2:1:11101:17754:1070 1:N:0:ATCACG
CAAGCAACTTACNTTACTTTAGGCTGNAAANNGNCTGCCTGAANTNCCTGCTCACNAATCCCNCNNNNNCNTNNNT
+
AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEEEEEEE#E#EEEEEEEEE#EAEAEA#/#####E#A###E
@NB500956:89:HW2FHBGX2:1:11101:26223:1070 1:N:0:ATCACG
TCAATTTCAGAACTTTTTATTGGTCTNTTCNNGNATTCATCTTNTNCCTGGTTTANTCTTGGNANNNNNTNTNNNT
+
AAAAAEEEEEEEEEEEEEEEEEEEEE#EEA##E#EEEEEEEEE#E#<EAEEEEEE#EEEEEE#E#####E#E###E
`

func stringScanner(s string) *Scanner {
	return NewScanner(bytes.NewReader([]byte(s)), All)
}

// scanAll returns the sequences read from s and the causes of the
// reported invalid records.
func scanAll(t *testing.T, s string) (seqs []string, causes []error) {
	scan := stringScanner(s)
	scan.Invalid = func(err error) { causes = append(causes, errors.Cause(err)) }
	var r Read
	for scan.Scan(&r) {
		seqs = append(seqs, string(r.Seq))
	}
	require.NoError(t, scan.Err())
	assert.Equal(t, len(causes), scan.NInvalid())
	return
}

func TestFASTQ(t *testing.T) {
	s := stringScanner(fq)
	var r Read
	if !s.Scan(&r) {
		t.Fatal(s.Err())
	}
	if got, want := string(r.ID), "@NB500956:89:HW2FHBGX2:1:11101:25648:1069 1:N:0:ATCACG"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := string(r.Name()), "NB500956:89:HW2FHBGX2:1:11101:25648:1069"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := string(r.Seq), "ATACAGGCCTGANCCACTGTGCCCAGNCTANNTNATTANTGAANANAGAATNGTTNTAAATANANNNNNTNTNNNC"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := string(r.Unk), "+"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := string(r.Qual), "AAAAAEEEEEEE#EEAEEEEEEEEEE#EEE##E#EEEE#EEEE#E#EEEEE#EEE#EEEAEE#A#####E#E###E"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	var n int
	for s.Scan(&r) {
		n++
	}
	if got, want := n, 5; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if err := s.Err(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFields(t *testing.T) {
	s := NewScanner(bytes.NewReader([]byte(fq)), ID|Seq)
	var r Read
	require.True(t, s.Scan(&r))
	assert.NotEmpty(t, r.ID)
	assert.NotEmpty(t, r.Seq)
	assert.Empty(t, r.Unk)
	assert.Empty(t, r.Qual)
}

func TestBadFASTQ(t *testing.T) {
	seqs, causes := scanAll(t, "12312#")
	assert.Empty(t, seqs)
	assert.Equal(t, []error{ErrInvalid}, causes)

	seqs, causes = scanAll(t, "@1234\n123")
	assert.Empty(t, seqs)
	assert.Equal(t, []error{ErrShort}, causes)
}

func TestSkipInvalid(t *testing.T) {
	const data = "@r1\nACGT\n+\nIIII\n" +
		"@r2\nACGT\n+\nIII\n" + // quality too short
		"@r3\nACGT\n@r4\nGGCC\n+\nIIII\n" + // missing separator
		"junk\nmore junk\n" +
		"@r5\nTT\n+r5\nII\n" +
		"@r6\nAC\n+\n" // truncated
	seqs, causes := scanAll(t, data)
	assert.Equal(t, []string{"ACGT", "GGCC", "TT"}, seqs)
	assert.Equal(t, []error{ErrInvalid, ErrInvalid, ErrInvalid, ErrShort}, causes)
}
