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

package bgzf

import (
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/exascience/pargo/pipeline"
)

type (
	// Writer writes in parallel to a BGZF file.
	Writer struct {
		w       io.Writer
		level   int
		p       pipeline.Pipeline
		wait    sync.WaitGroup
		current *block
		channel chan *block
		data    interface{}
		closed  bool
	}

	// blockSink is the pipeline.Source view of a Writer: it produces
	// the uncompressed blocks filled by Write.
	blockSink Writer
)

// Err implements the corresponding method of pipeline.Source
func (*blockSink) Err() error {
	return nil
}

// Prepare implements the corresponding method of pipeline.Source
func (*blockSink) Prepare(_ context.Context) (size int) {
	return -1
}

// Fetch implements the corresponding method of pipeline.Source
func (sink *blockSink) Fetch(size int) (fetched int) {
	if blk, ok := <-sink.channel; ok {
		sink.data = blk
		return 1
	}
	sink.data = nil
	return 0
}

// Data implements the corresponding method of pipeline.Source
func (sink *blockSink) Data() interface{} {
	return sink.data
}

var flateWriterPools sync.Map // level -> *sync.Pool

func flateWriterPool(level int) *sync.Pool {
	if pool, ok := flateWriterPools.Load(level); ok {
		return pool.(*sync.Pool)
	}
	pool, _ := flateWriterPools.LoadOrStore(level, &sync.Pool{})
	return pool.(*sync.Pool)
}

// NewWriter returns a Writer for the given io.Writer.
//
// Levels follow compress/flate: 1 (BestSpeed) to 9
// (BestCompression), 0 (NoCompression), -1 (DefaultCompression), and
// -2 (HuffmanOnly).
func NewWriter(w io.Writer, level int) (*Writer, error) {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, fmt.Errorf("invalid BGZF compression level %v", level)
	}
	bgzf := &Writer{
		w:       w,
		level:   level,
		current: blockPool.Get().(*block),
		channel: make(chan *block, 1),
	}
	bgzf.current.data = bgzf.current.data[:0]
	pool := flateWriterPool(level)
	bgzf.p.Source((*blockSink)(bgzf))
	bgzf.p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		uncompressed := data.(*block)
		compressed := blockPool.Get().(*block)
		var fw *flate.Writer
		if pooled := pool.Get(); pooled != nil {
			fw = pooled.(*flate.Writer)
		} else {
			fw, _ = flate.NewWriter(io.Discard, level)
		}
		var err error
		compressed.data, err = compressBlock(compressed.data[:0], uncompressed.data, fw)
		pool.Put(fw)
		uncompressed.data = uncompressed.data[:0]
		blockPool.Put(uncompressed)
		if err != nil {
			bgzf.p.SetErr(err)
			blockPool.Put(compressed)
			return nil
		}
		return compressed
	})), pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
		if compressed, ok := data.(*block); ok && compressed != nil {
			if _, err := w.Write(compressed.data); err != nil {
				bgzf.p.SetErr(err)
			}
			blockPool.Put(compressed)
		}
		return nil
	})))
	bgzf.wait.Add(1)
	go func() {
		defer bgzf.wait.Done()
		bgzf.p.Run()
		// unblock pending Writes if the pipeline stopped early
		for range bgzf.channel {
		}
	}()
	return bgzf, nil
}

// Write implements the corresponding method of io.Writer.
func (bgzf *Writer) Write(p []byte) (n int, err error) {
	if bgzf.closed {
		return 0, errors.New("write to closed BGZF writer")
	}
	for len(p) > 0 {
		free := maxDataSize - len(bgzf.current.data)
		k := len(p)
		if k > free {
			k = free
		}
		bgzf.current.data = append(bgzf.current.data, p[:k]...)
		p = p[k:]
		n += k
		if len(bgzf.current.data) == maxDataSize {
			bgzf.channel <- bgzf.current
			bgzf.current = blockPool.Get().(*block)
			bgzf.current.data = bgzf.current.data[:0]
		}
	}
	return n, nil
}

// Close flushes pending data, waits for all blocks to be written, and
// writes the BGZF end-of-file marker. It does not close the
// underlying io.Writer.
func (bgzf *Writer) Close() error {
	if bgzf.closed {
		return nil
	}
	bgzf.closed = true
	if len(bgzf.current.data) > 0 {
		bgzf.channel <- bgzf.current
	} else {
		blockPool.Put(bgzf.current)
	}
	bgzf.current = nil
	close(bgzf.channel)
	bgzf.wait.Wait()
	if err := bgzf.p.Err(); err != nil {
		return err
	}
	_, err := bgzf.w.Write(eofBlock)
	return err
}
