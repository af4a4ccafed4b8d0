// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package amplicon_test

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OscarAspelin95/fasta-rs/amplicon"
	"github.com/OscarAspelin95/fasta-rs/encoding/fastx"
	"github.com/OscarAspelin95/fasta-rs/primer"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFasta = ">seq1 first\nATCGTTTTTATCG\n>seq2\n\n>seq3\nATCGTTTTT\nATCGTTTTTATCG\n"

var testPairs = []primer.Pair{
	newPair("p1", "ATCG", "CGAT", 5, 5, primer.UnsetMismatches),
	newPair("p2", "GGGG", "CCCC", 0, 100, primer.UnsetMismatches),
}

func runString(t *testing.T, data string, pairs []primer.Pair, opts amplicon.Opts) (string, amplicon.Stats) {
	var out bytes.Buffer
	in := fastx.NewReader(strings.NewReader(data), fastx.FASTA, "test")
	stats, err := amplicon.Run(vcontext.Background(), in, &out, pairs, opts)
	require.NoError(t, err)
	return out.String(), stats
}

func TestRunTSV(t *testing.T) {
	got, stats := runString(t, testFasta, testPairs, amplicon.DefaultOpts)
	expect.EQ(t, got, amplicon.Header+
		"seq1\tp1\t4\t9\t5\t13\tTTTTT\n"+
		"seq3\tp1\t4\t9\t5\t13\tTTTTT\n"+
		"seq3\tp1\t13\t18\t5\t13\tTTTTT\n")
	expect.EQ(t, stats, amplicon.Stats{Records: 3, Skipped: 0, Amplicons: 3})
}

func TestRunFASTA(t *testing.T) {
	opts := amplicon.DefaultOpts
	opts.Format = amplicon.FASTA
	got, _ := runString(t, testFasta, testPairs, opts)
	expect.EQ(t, got, ">seq1|p1|4-9\nTTTTT\n>seq3|p1|4-9\nTTTTT\n>seq3|p1|13-18\nTTTTT\n")
}

func TestRunEmpty(t *testing.T) {
	got, stats := runString(t, "", testPairs, amplicon.DefaultOpts)
	expect.EQ(t, got, amplicon.Header)
	expect.EQ(t, stats, amplicon.Stats{})

	got, stats = runString(t, ">empty\n", testPairs, amplicon.DefaultOpts)
	expect.EQ(t, got, amplicon.Header)
	expect.EQ(t, stats.Records, int64(1))
}

func TestRunSkipsInvalidRecords(t *testing.T) {
	got, stats := runString(t, "TTTT\n>ok\nATCGTTTTTATCG\n>\nATCGTTTTTATCG\n", testPairs, amplicon.DefaultOpts)
	expect.EQ(t, got, amplicon.Header+"ok\tp1\t4\t9\t5\t13\tTTTTT\n")
	expect.EQ(t, stats, amplicon.Stats{Records: 1, Skipped: 2, Amplicons: 1})
}

// expectedRows formats the amplicons of every record one record at a time.
func expectedRows(t *testing.T, typ amplicon.SearchType, names []string, seqs [][]byte, pairs []primer.Pair) (string, int64) {
	s, err := amplicon.NewSearcher(pairs, typ)
	require.NoError(t, err)
	var (
		buf strings.Builder
		n   int64
	)
	buf.WriteString(amplicon.Header)
	for i, seq := range seqs {
		for j := range pairs {
			for _, a := range s.Search(seq, j) {
				fmt.Fprintf(&buf, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
					names[i], pairs[j].Name, a.Start, a.End, a.InsertLength, a.TotalLength, a.Seq)
				n++
			}
		}
	}
	return buf.String(), n
}

func TestRunOrdered(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	pairs := []primer.Pair{
		newPair("a", "ACGTTGCAAG", "TTGACCGTAA", 0, 30, 1),
		newPair("b", "GGATCCTTAG", "CATTAGGCAT", 5, 40, 2),
	}
	var (
		data  strings.Builder
		names []string
		seqs  [][]byte
	)
	for i := 0; i < 400; i++ {
		p := pairs[r.Intn(len(pairs))]
		seq := plant(r, p, p.MaxMismatches())
		names = append(names, fmt.Sprintf("rec%d", i))
		seqs = append(seqs, seq)
		fmt.Fprintf(&data, ">%s\n%s\n", names[i], seq)
	}
	for _, typ := range []amplicon.SearchType{amplicon.Exact, amplicon.Fuzzy} {
		want, n := expectedRows(t, typ, names, seqs, pairs)
		for _, threads := range []int{1, 3, 8} {
			opts := amplicon.Opts{SearchType: typ, Format: amplicon.TSV, Threads: threads, QueueSize: 4}
			got, stats := runString(t, data.String(), pairs, opts)
			expect.EQ(t, got, want, "%v threads=%d", typ, threads)
			expect.EQ(t, stats, amplicon.Stats{Records: 400, Amplicons: n})
		}
	}
}

type failingWriter struct {
	n int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, fmt.Errorf("disk full")
	}
	w.n--
	return len(p), nil
}

func TestRunWriteError(t *testing.T) {
	in := fastx.NewReader(strings.NewReader(testFasta), fastx.FASTA, "test")
	_, err := amplicon.Run(vcontext.Background(), in, &failingWriter{n: 1}, testPairs, amplicon.DefaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write amplicons")
	assert.Contains(t, err.Error(), "disk full")

	in = fastx.NewReader(strings.NewReader(testFasta), fastx.FASTA, "test")
	_, err = amplicon.Run(vcontext.Background(), in, &failingWriter{}, testPairs, amplicon.DefaultOpts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write header")
}

func TestRunCanceled(t *testing.T) {
	var data strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&data, ">r%d\nATCGTTTTTATCG\n", i)
	}
	ctx, cancel := context.WithCancel(vcontext.Background())
	cancel()
	in := fastx.NewReader(strings.NewReader(data.String()), fastx.FASTA, "test")
	_, err := amplicon.Run(ctx, in, ioutil.Discard, testPairs, amplicon.DefaultOpts)
	assert.Equal(t, context.Canceled, err)
}

func TestRunFiles(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	primers := filepath.Join(dir, "primers.tsv")
	require.NoError(t, ioutil.WriteFile(primers, []byte(
		"# name\tfwd\trev\tmin\tmax\tmismatches\n"+
			"p1\tATCG\tCGAT\t5\t5\n"+
			"broken\tATCG\tCGAT\n"+
			"p2\tATCG\tCGAT\tx\t5\n"+
			"p3\tAACG\tCGAT\t5\t5\t0\n"+
			"p4\tTTTT\tAAAA\t0\t0\n"), 0644))

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(testFasta))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	input := filepath.Join(dir, "in.fa.gz")
	require.NoError(t, ioutil.WriteFile(input, gz.Bytes(), 0644))

	out := filepath.Join(dir, "out.tsv")
	opts := amplicon.DefaultOpts
	opts.Threads = 2
	stats, err := amplicon.RunFiles(ctx, input, primers, out, opts)
	require.NoError(t, err)
	expect.EQ(t, stats, amplicon.Stats{Records: 3, Amplicons: 3})
	got, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	expect.EQ(t, string(got), amplicon.Header+
		"seq1\tp1\t4\t9\t5\t13\tTTTTT\n"+
		"seq3\tp1\t4\t9\t5\t13\tTTTTT\n"+
		"seq3\tp1\t13\t18\t5\t13\tTTTTT\n")

	opts.SearchType = amplicon.Fuzzy
	stats, err = amplicon.RunFiles(ctx, input, primers, out, opts)
	require.NoError(t, err)
	got, err = ioutil.ReadFile(out)
	require.NoError(t, err)
	expect.EQ(t, string(got), amplicon.Header+
		"seq1\tp1\t4\t9\t5\t13\tTTTTT\n"+
		"seq3\tp1\t4\t9\t5\t13\tTTTTT\n"+
		"seq3\tp1\t13\t18\t5\t13\tTTTTT\n")
	expect.EQ(t, stats, amplicon.Stats{Records: 3, Amplicons: 3})

	_, err = amplicon.RunFiles(ctx, filepath.Join(dir, "missing.fa"), primers, out, opts)
	assert.True(t, errors.Is(errors.NotExist, err), "%v", err)
	_, err = amplicon.RunFiles(ctx, filepath.Join(dir, "in.txt"), primers, out, opts)
	assert.True(t, errors.Is(errors.NotSupported, err), "%v", err)
}
