// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// fastx is a toolkit for FASTA and FASTQ files.  Its amplicon subcommand
// runs in-silico PCR: it reports every product of a table of primer pairs
// on every input record.
//
//   fastx -threads 8 amplicon -fasta ref.fa.gz -primers primers.tsv -search-type fuzzy -outfile out.tsv
package main

import "github.com/OscarAspelin95/fasta-rs/cmd/fastx/cmd"

func main() {
	cmd.Run()
}
