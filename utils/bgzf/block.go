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

// Package bgzf reads and writes BGZF files, the blocked gzip variant
// used for compressed VCF files. Blocks are compressed and
// decompressed in parallel; output order is preserved.
package bgzf

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

const (
	// MaxBlockSize is the maximum size of a compressed BGZF block.
	MaxBlockSize = 65536

	// maxDataSize bounds the uncompressed data of one block so that
	// the compressed block never exceeds MaxBlockSize, even for
	// incompressible input.
	maxDataSize = 0xff00

	headerSize  = 18
	trailerSize = 8
)

// blockHeader is a gzip member header with the BC extra subfield;
// bytes 16 and 17 hold the total block size minus 1.
var blockHeader = [headerSize]byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x00, 0x00,
}

// eofBlock is the empty block that terminates a BGZF file.
var eofBlock = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00,
	0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// IsGzip determines if the the given byte scanner produces
// a gzip file. It uses ReadByte and UnreadByte to check
// only the initial byte from the input.
func IsGzip(scanner io.ByteScanner) (bool, error) {
	b, err := scanner.ReadByte()
	if err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := scanner.UnreadByte(); err != nil {
		return false, err
	}
	return b == 0x1f, nil
}

// block is one BGZF block, either compressed or not.
type block struct {
	data  []byte
	crc32 uint32
	size  uint32 // uncompressed size
}

// compressBlock appends a complete BGZF block holding data to dst.
func compressBlock(dst, data []byte, fw *flate.Writer) ([]byte, error) {
	start := len(dst)
	dst = append(dst, blockHeader[:]...)
	buf := bytes.NewBuffer(dst)
	fw.Reset(buf)
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	dst = buf.Bytes()
	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	dst = append(dst, trailer[:]...)
	total := len(dst) - start
	if total > MaxBlockSize {
		return nil, errors.New("BGZF block exceeds maximum block size")
	}
	binary.LittleEndian.PutUint16(dst[start+16:start+18], uint16(total-1))
	return dst, nil
}

// readBlock reads the next compressed block. It returns io.EOF at the
// end of the input.
func readBlock(r io.Reader, blk *block) error {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return errors.New("truncated BGZF block header")
		}
		return err
	}
	if header[0] != 0x1f || header[1] != 0x8b || header[2] != 8 || header[3]&4 == 0 {
		return errors.New("invalid BGZF block header")
	}
	extra := make([]byte, binary.LittleEndian.Uint16(header[10:12]))
	if _, err := io.ReadFull(r, extra); err != nil {
		return errors.New("truncated BGZF block header")
	}
	bsize := -1
	for i := 0; i+4 <= len(extra); {
		slen := int(binary.LittleEndian.Uint16(extra[i+2 : i+4]))
		if extra[i] == 'B' && extra[i+1] == 'C' && slen == 2 && i+6 <= len(extra) {
			bsize = int(binary.LittleEndian.Uint16(extra[i+4:i+6])) + 1
			break
		}
		i += 4 + slen
	}
	if bsize < 0 {
		return errors.New("missing BC extra subfield in BGZF header")
	}
	dataSize := bsize - len(header) - len(extra) - trailerSize
	if dataSize < 0 {
		return errors.New("invalid BGZF block size")
	}
	if cap(blk.data) < dataSize {
		blk.data = make([]byte, dataSize)
	}
	blk.data = blk.data[:dataSize]
	if _, err := io.ReadFull(r, blk.data); err != nil {
		return errors.New("truncated BGZF block")
	}
	var trailer [trailerSize]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return errors.New("truncated BGZF block")
	}
	blk.crc32 = binary.LittleEndian.Uint32(trailer[0:4])
	blk.size = binary.LittleEndian.Uint32(trailer[4:8])
	return nil
}

// decompressBlock inflates a compressed block into dst.
func decompressBlock(dst []byte, blk *block, fr io.ReadCloser) ([]byte, error) {
	if err := fr.(flate.Resetter).Reset(bytes.NewReader(blk.data), nil); err != nil {
		return nil, err
	}
	if cap(dst) < int(blk.size) {
		dst = make([]byte, blk.size)
	}
	dst = dst[:blk.size]
	if _, err := io.ReadFull(fr, dst); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if crc32.ChecksumIEEE(dst) != blk.crc32 {
		return nil, errors.New("invalid CRC-32 value for a data block in a BGZF file")
	}
	return dst, nil
}
