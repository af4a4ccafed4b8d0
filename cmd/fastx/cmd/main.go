// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"flag"
	"regexp"
	"runtime"

	"v.io/x/lib/cmdline"
)

var threads = flag.Int("threads", 8, "Number of worker threads; 0 means one per CPU")

func workers() int {
	if *threads <= 0 {
		return runtime.NumCPU()
	}
	return *threads
}

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "fastx",
		Short:    "Tools for working with FASTA and FASTQ files",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdAmplicon(),
		},
	}
}

// Run parses the command line and runs the selected subcommand.
func Run() {
	cmdline.HideGlobalFlagsExcept(regexp.MustCompile(`^threads$`))
	cmdline.Main(newCmdRoot())
}
