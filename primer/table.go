// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package primer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// Messages identifying the failure classes of a table line.
const (
	msgLineFormat = "primer line format"
	msgLength     = "primer length parsing"
	msgNoPrimers  = "no primers found"
)

// ParseTable reads a primer table from r.  Lines that fail to parse or
// validate are skipped; the error for each is returned in skipped, in line
// order.  err is non-nil if r fails, or if no valid pair remains (kind
// errors.NotExist).
func ParseTable(r io.Reader) (pairs []Pair, skipped []error, err error) {
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		p, e := parseLine(ln, line)
		if e == nil {
			e = p.Validate()
			if e != nil {
				e = errors.E(fmt.Sprintf("line %d", ln), e)
			}
		}
		if e != nil {
			skipped = append(skipped, e)
			continue
		}
		pairs = append(pairs, p)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, errors.E(err, "reading primer table")
	}
	if len(pairs) == 0 {
		return nil, skipped, errors.E(errors.NotExist, msgNoPrimers)
	}
	return pairs, skipped, nil
}

func parseLine(ln int, line string) (Pair, error) {
	f := strings.Split(line, "\t")
	if len(f) != 5 && len(f) != 6 {
		return Pair{}, errors.E(errors.Invalid,
			fmt.Sprintf("%s: line %d has %d fields, want 5 or 6: %q", msgLineFormat, ln, len(f), line))
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	p := Pair{
		Name:       f[0],
		Forward:    strings.ToUpper(f[1]),
		Reverse:    strings.ToUpper(f[2]),
		Mismatches: UnsetMismatches,
	}
	var err error
	if p.MinInsert, err = parseCount(ln, "min_insert", f[3]); err != nil {
		return Pair{}, err
	}
	if p.MaxInsert, err = parseCount(ln, "max_insert", f[4]); err != nil {
		return Pair{}, err
	}
	if len(f) == 6 {
		if p.Mismatches, err = parseCount(ln, "mismatches", f[5]); err != nil {
			return Pair{}, err
		}
	}
	return p, nil
}

func parseCount(ln int, field, s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, errors.E(errors.Invalid,
			fmt.Sprintf("%s: line %d: %s %q is not a non-negative integer", msgLength, ln, field, s))
	}
	return int(v), nil
}

// ReadTable reads the primer table at path.  Skipped lines are logged.
func ReadTable(ctx context.Context, path string) (pairs []Pair, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open primer table", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	pairs, skipped, err := ParseTable(in.Reader(ctx))
	for _, e := range skipped {
		log.Error.Printf("%s: skipping primer line: %v", path, e)
	}
	if err != nil {
		return nil, errors.E(err, path)
	}
	log.Debug.Printf("%s: loaded %d primer pairs, skipped %d lines", path, len(pairs), len(skipped))
	return pairs, nil
}
