// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package amplicon

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/OscarAspelin95/fasta-rs/encoding/fastx"
	"github.com/OscarAspelin95/fasta-rs/primer"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/traverse"
)

// Opts configures Run.
type Opts struct {
	// SearchType selects exact or fuzzy primer matching.
	SearchType SearchType
	// Format selects the output encoding.
	Format Format
	// Threads is the number of worker goroutines.  Zero means
	// runtime.NumCPU().
	Threads int
	// QueueSize bounds the number of records that have been read but not
	// yet written.
	QueueSize int
}

// DefaultOpts is the default configuration.
var DefaultOpts = Opts{
	SearchType: Exact,
	Format:     TSV,
	Threads:    0,
	QueueSize:  256,
}

// Stats summarizes a run.
type Stats struct {
	// Records is the number of records searched.
	Records int64
	// Skipped is the number of malformed input records that were dropped.
	Skipped int64
	// Amplicons is the number of amplicons written.
	Amplicons int64
}

type job struct {
	idx int
	rec fastx.Record
}

type result struct {
	rows []byte
	n    int
}

// Run searches every record from in for the amplicons of every pair, and
// writes them to out in record order.  Within a record, rows follow the
// order of pairs, then Searcher.Search order.
//
// Records are searched by opts.Threads workers.  Each worker encodes a
// record's rows into its own buffer; a single collector writes the buffers
// in input order.
func Run(ctx context.Context, in fastx.Scanner, out io.Writer, pairs []primer.Pair, opts Opts) (Stats, error) {
	var stats Stats
	s, err := NewSearcher(pairs, opts.SearchType)
	if err != nil {
		return stats, err
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultOpts.QueueSize
	}
	if err := writeHeader(out, opts.Format); err != nil {
		return stats, errors.E(err, "write header")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		e     errors.Once
		queue = syncqueue.NewOrderedQueue(queueSize)
		jobs  = make(chan job, threads)
		wg    sync.WaitGroup
	)

	// Collector.  After a write error it keeps draining the queue so that
	// workers never block.
	wg.Add(1)
	go func() {
		defer wg.Done()
		failed := false
		for {
			entry, ok, err := queue.Next()
			if err != nil {
				e.Set(err)
				return
			}
			if !ok {
				return
			}
			r := entry.(result)
			if failed || len(r.rows) == 0 {
				continue
			}
			if _, err := out.Write(r.rows); err != nil {
				e.Set(errors.E(err, "write amplicons"))
				failed = true
				cancel()
				continue
			}
			stats.Amplicons += int64(r.n)
		}
	}()

	// Producer.  Scanner methods are only called from this goroutine.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		var rec fastx.Record
		for idx := 0; in.Scan(&rec); idx++ {
			select {
			case jobs <- job{idx, rec}:
			case <-ctx.Done():
				e.Set(ctx.Err())
				return
			}
			stats.Records++
			rec = fastx.Record{}
		}
		if err := in.Err(); err != nil {
			e.Set(errors.E(err, "read records"))
		}
	}()

	err = traverse.Each(threads, func(int) error {
		enc := newRowEncoder(opts.Format)
		for j := range jobs {
			// Every index is inserted, even after cancellation, so the
			// collector never waits on a gap.
			var r result
			if ctx.Err() == nil {
				var err error
				if r, err = searchRecord(s, enc, j.rec); err != nil {
					e.Set(err)
					cancel()
				}
			}
			if err := queue.Insert(j.idx, r); err != nil {
				return err
			}
		}
		return nil
	})
	e.Set(err)
	if err := queue.Close(nil); err != nil {
		e.Set(err)
	}
	wg.Wait()

	if sk, ok := in.(interface{ NInvalid() int }); ok {
		stats.Skipped = int64(sk.NInvalid())
	}
	log.Printf("amplicon: searched %d records (%d skipped) for %d primer pairs: %d amplicons",
		stats.Records, stats.Skipped, s.NumPairs(), stats.Amplicons)
	return stats, e.Err()
}

func searchRecord(s *Searcher, enc rowEncoder, rec fastx.Record) (result, error) {
	var n int
	for i, amps := range s.SearchAll(rec.Seq) {
		if len(amps) == 0 {
			continue
		}
		p := s.Pair(i)
		if err := enc.add(rec.ID, &p, amps); err != nil {
			return result{}, errors.E(err, "encode", rec.ID)
		}
		n += len(amps)
	}
	rows, err := enc.take()
	if err != nil {
		return result{}, errors.E(err, "encode", rec.ID)
	}
	return result{rows: rows, n: n}, nil
}

// RunFiles reads the primer table at primerPath, searches the FASTA or FASTQ
// file at inPath (standard input if empty), and writes amplicons to outPath
// (standard output if empty).
func RunFiles(ctx context.Context, inPath, primerPath, outPath string, opts Opts) (stats Stats, err error) {
	pairs, err := primer.ReadTable(ctx, primerPath)
	if err != nil {
		return stats, err
	}
	in, err := fastx.Open(ctx, inPath)
	if err != nil {
		return stats, err
	}
	out, err := fastx.Create(ctx, outPath)
	if err != nil {
		_ = in.Close(ctx)
		return stats, err
	}
	e := errors.Once{}
	stats, err = Run(ctx, in, out, pairs, opts)
	e.Set(err)
	e.Set(out.Close(ctx))
	e.Set(in.Close(ctx))
	if e.Err() == nil {
		log.Debug.Printf("amplicon: wrote %d amplicons to %s", stats.Amplicons, out.Path())
	}
	return stats, e.Err()
}
