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
	"bytes"
	"compress/flate"
	"context"
	"io"
	"sync"

	"github.com/exascience/pargo/pipeline"
)

type (
	// Reader reads in parallel from a BGZF file.
	Reader struct {
		r       io.Reader
		err     error
		p       pipeline.Pipeline
		wait    sync.WaitGroup
		channel chan *block
		ctx     context.Context
		cancel  func()
		data    interface{}
		current *block
		index   int
	}

	// blockSource is the pipeline.Source view of a Reader.
	blockSource Reader
)

var (
	blockPool = sync.Pool{New: func() interface{} {
		return &block{data: make([]byte, 0, MaxBlockSize)}
	}}

	flateReaderPool = sync.Pool{New: func() interface{} {
		return flate.NewReader(bytes.NewReader(nil))
	}}
)

// Err implements the corresponding method of pipeline.Source
func (src *blockSource) Err() error {
	if src.err != io.EOF {
		return src.err
	}
	return nil
}

// Prepare implements the corresponding method of pipeline.Source
func (src *blockSource) Prepare(_ context.Context) (size int) {
	return -1
}

// Fetch implements the corresponding method of pipeline.Source
func (src *blockSource) Fetch(size int) (fetched int) {
	if src.err != nil {
		src.data = nil
		return 0
	}
	blk := blockPool.Get().(*block)
	if err := readBlock(src.r, blk); err != nil {
		blockPool.Put(blk)
		src.err = err
		src.data = nil
		return 0
	}
	src.data = blk
	return 1
}

// Data implements the corresponding method of pipeline.Source
func (src *blockSource) Data() interface{} {
	return src.data
}

// NewReader returns a Reader for the given io.Reader. Decompression
// starts immediately in the background; Close must be called to stop it.
func NewReader(r io.Reader) *Reader {
	ctx, cancel := context.WithCancel(context.Background())
	bgzf := &Reader{
		r:       r,
		channel: make(chan *block, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	bgzf.p.Source((*blockSource)(bgzf))
	bgzf.p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		compressed := data.(*block)
		uncompressed := blockPool.Get().(*block)
		fr := flateReaderPool.Get().(io.ReadCloser)
		var err error
		uncompressed.data, err = decompressBlock(uncompressed.data, compressed, fr)
		flateReaderPool.Put(fr)
		blockPool.Put(compressed)
		if err != nil {
			bgzf.p.SetErr(err)
			blockPool.Put(uncompressed)
			return nil
		}
		return uncompressed
	})), pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
		if blk, ok := data.(*block); ok && blk != nil {
			select {
			case <-bgzf.ctx.Done():
			case bgzf.channel <- blk:
			}
		}
		return nil
	})))
	bgzf.wait.Add(1)
	go func() {
		defer bgzf.wait.Done()
		// Read reports p.Err once the channel is closed
		defer close(bgzf.channel)
		bgzf.p.Run()
	}()
	return bgzf
}

// Close implements the corresponding method of io.Closer
func (bgzf *Reader) Close() error {
	bgzf.cancel()
	for range bgzf.channel {
	}
	bgzf.wait.Wait()
	return bgzf.p.Err()
}

// Read implements the corresponding method of io.Reader
func (bgzf *Reader) Read(p []byte) (n int, err error) {
	for bgzf.current == nil || bgzf.index == len(bgzf.current.data) {
		if bgzf.current != nil {
			blockPool.Put(bgzf.current)
			bgzf.current = nil
		}
		blk, ok := <-bgzf.channel
		if !ok {
			bgzf.wait.Wait()
			if err := bgzf.p.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		bgzf.current = blk
		bgzf.index = 0
	}
	n = copy(p, bgzf.current.data[bgzf.index:])
	bgzf.index += n
	return n, nil
}
