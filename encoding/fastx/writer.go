// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package fastx

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/pgzip"
)

const outputBufferSize = 1 << 20

// Output is a buffered output sink.  Paths ending in ".gz" are gzip
// compressed.  Output implements io.Writer; it is not threadsafe.
type Output struct {
	w    *bufio.Writer
	gz   *pgzip.Writer
	f    file.File
	path string
}

// Create creates the file at path for writing.  An empty path writes to
// standard output.
func Create(ctx context.Context, path string) (*Output, error) {
	if path == "" {
		return &Output{w: bufio.NewWriterSize(os.Stdout, outputBufferSize), path: "stdout"}, nil
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	o := &Output{f: f, path: path}
	w := f.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		o.gz = pgzip.NewWriter(w)
		w = o.gz
	}
	o.w = bufio.NewWriterSize(w, outputBufferSize)
	return o, nil
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Path returns the output path, or "stdout".
func (o *Output) Path() string { return o.path }

// Close flushes buffered data and closes the underlying file.  Closing
// standard output only flushes it.
func (o *Output) Close(ctx context.Context) error {
	e := errors.Once{}
	e.Set(o.w.Flush())
	if o.gz != nil {
		e.Set(o.gz.Close())
	}
	if o.f != nil {
		e.Set(o.f.Close(ctx))
	}
	if err := e.Err(); err != nil {
		return errors.E(err, "close", o.path)
	}
	return nil
}

var _ io.Writer = (*Output)(nil)
