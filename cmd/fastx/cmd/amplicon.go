// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/OscarAspelin95/fasta-rs/amplicon"
	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

const ampliconLong = `
Amplicon finds in-silico PCR products.

Each line of the primer table holds a pair:

  name <TAB> forward <TAB> reverse <TAB> min_insert <TAB> max_insert [<TAB> mismatches]

Primers are given 5'->3'.  An amplicon is reported when the forward primer
and the reverse complement of the reverse primer match the reference with an
insert of min_insert to max_insert bases between them.  Exact search requires
literal matches; fuzzy search allows up to mismatches edits (default 1) per
primer and honors IUPAC ambiguity codes in primers.

Output is TSV with columns
sequence_id, primer_name, start, end, insert_length, actual_length, amplicon.
start and end are 0-based and delimit the insert.
`

func newCmdAmplicon() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "amplicon",
		Short: "Find in-silico PCR amplicons",
		Long:  ampliconLong,
	}
	var (
		fastaPath  = cmd.Flags.String("fasta", "", "Input FASTA or FASTQ path, optionally gzipped. Reads stdin if empty")
		primerPath = cmd.Flags.String("primers", "", "Primer table path (required)")
		searchType = cmd.Flags.String("search-type", "", "Primer matching: 'exact' or 'fuzzy' (required)")
		outPath    = cmd.Flags.String("outfile", "", "Output path; '.gz' suffix compresses. Writes stdout if empty")
		format     = cmd.Flags.String("format", amplicon.DefaultOpts.Format.String(), "Output format: 'tsv' or 'fasta'")
		queueSize  = cmd.Flags.Int("queue-size", amplicon.DefaultOpts.QueueSize, "Maximum number of records in flight")
	)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("amplicon takes no positional arguments, but got %v", argv)
		}
		if *primerPath == "" {
			return errors.E(errors.Invalid, "-primers is required")
		}
		if *searchType == "" {
			return errors.E(errors.Invalid, "-search-type is required")
		}
		opts := amplicon.DefaultOpts
		var err error
		if opts.SearchType, err = amplicon.ParseSearchType(*searchType); err != nil {
			return err
		}
		if opts.Format, err = amplicon.ParseFormat(*format); err != nil {
			return err
		}
		opts.Threads = workers()
		opts.QueueSize = *queueSize
		_, err = amplicon.RunFiles(vcontext.Background(), *fastaPath, *primerPath, *outPath, opts)
		return err
	})
	return cmd
}
