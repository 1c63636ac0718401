// vcfsplit: a tool for decomposing multi-allelic VCF records.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package vcf

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/exascience/pargo/pipeline"
)

type (
	// lineBatch is a batch of consecutive input lines; first is the
	// 1-based line number of lines[0].
	lineBatch struct {
		first int
		lines []string
	}

	// lineSource feeds data lines to a pipeline in batches.
	lineSource struct {
		reader  *bufio.Reader
		pending []string
		next    int
		err     error
		data    *lineBatch
	}

	outputBatch struct {
		bytes    []byte
		warnings []Warning
		stats    Stats
	}
)

// Err implements the corresponding method of pipeline.Source
func (src *lineSource) Err() error {
	return src.err
}

// Prepare implements the corresponding method of pipeline.Source
func (src *lineSource) Prepare(_ context.Context) (size int) {
	return -1
}

// Fetch implements the corresponding method of pipeline.Source
func (src *lineSource) Fetch(size int) (fetched int) {
	if src.err != nil {
		src.data = nil
		return 0
	}
	batch := &lineBatch{first: src.next, lines: make([]string, 0, size)}
	batch.lines = append(batch.lines, src.pending...)
	src.pending = nil
	for len(batch.lines) < size {
		line, ok, err := getLine(src.reader)
		if err != nil {
			src.err = fmt.Errorf("%w, while reading VCF data lines", err)
			break
		}
		if !ok {
			break
		}
		batch.lines = append(batch.lines, line)
	}
	fetched = len(batch.lines)
	src.next += fetched
	src.data = batch
	return fetched
}

// Data implements the corresponding method of pipeline.Source
func (src *lineSource) Data() interface{} {
	return src.data
}

// RunPipeline is like Run, but decomposes batches of data lines in
// parallel, using at most threads goroutines (0 means GOMAXPROCS).
// The output, the warnings passed to OnWarning, and the returned
// Stats are the same as those of Run.
func (driver *Driver) RunPipeline(r io.Reader, w io.Writer, threads int) (stats Stats, err error) {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	warn := driver.warner(&stats)
	first, more, err := driver.runHeader(reader, writer, &stats, warn)
	if err != nil {
		return stats, err
	}
	if !more {
		return stats, writer.Flush()
	}

	decomposers := sync.Pool{New: func() interface{} {
		return NewDecomposer(driver.Catalog)
	}}
	var p pipeline.Pipeline
	src := &lineSource{reader: reader, pending: []string{first}, next: stats.Lines}
	p.Source(src)
	p.Add(
		pipeline.LimitedPar(threads, pipeline.Receive(func(_ int, data interface{}) interface{} {
			batch := data.(*lineBatch)
			result := &outputBatch{}
			collect := func(w Warning) {
				result.warnings = append(result.warnings, w)
			}
			d := decomposers.Get().(*Decomposer)
			for i, line := range batch.lines {
				result.bytes = processDataLine(d, result.bytes, line, batch.first+i, collect, &result.stats)
			}
			decomposers.Put(d)
			result.stats.Lines = len(batch.lines)
			return result
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			result := data.(*outputBatch)
			for _, w := range result.warnings {
				warn(w)
			}
			stats.Add(result.stats)
			if _, err := writer.Write(result.bytes); err != nil {
				p.SetErr(err)
			}
			return nil
		})),
	)
	p.Run()
	// the first data line was counted by runHeader and again by its batch
	stats.Lines--
	if err = p.Err(); err != nil {
		return stats, err
	}
	return stats, writer.Flush()
}
