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
	"compress/flate"
	"io"
	"os"
	"path/filepath"

	"github.com/exascience/vcfsplit/utils/bgzf"
)

// GzExt is the file extension of bgzip-compressed VCF files.
const GzExt = ".gz"

// InputFile represents a VCF file for input.
type InputFile struct {
	rc   io.ReadCloser
	bgzf *bgzf.Reader
	*bufio.Reader
}

// OutputFile represents a VCF file for output.
type OutputFile struct {
	wc   io.WriteCloser
	bgzf *bgzf.Writer
	*bufio.Writer
}

// Open a VCF file for input.
//
// BGZF-compressed input is detected from its first byte, regardless
// of the filename extension.
//
// If the name is "/dev/stdin", then the input is read from os.Stdin.
func Open(name string) (*InputFile, error) {
	var rc io.ReadCloser
	if name == "/dev/stdin" {
		rc = os.Stdin
	} else {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		rc = file
	}
	raw := bufio.NewReader(rc)
	compressed, err := bgzf.IsGzip(raw)
	if err != nil {
		if rc != os.Stdin {
			_ = rc.Close()
		}
		return nil, err
	}
	if !compressed {
		return &InputFile{rc: rc, Reader: raw}, nil
	}
	reader := bgzf.NewReader(raw)
	return &InputFile{rc: rc, bgzf: reader, Reader: bufio.NewReader(reader)}, nil
}

// Create a VCF file for output.
//
// If the filename extension is .gz, or compressed is true, the output
// is BGZF-compressed.
//
// If the name is "/dev/stdout", then the output is written to
// os.Stdout.
func Create(name string, compressed bool) (*OutputFile, error) {
	var wc io.WriteCloser
	if name == "/dev/stdout" {
		wc = os.Stdout
	} else {
		file, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		wc = file
	}
	if filepath.Ext(name) != GzExt && !compressed {
		return &OutputFile{wc: wc, Writer: bufio.NewWriter(wc)}, nil
	}
	writer, err := bgzf.NewWriter(wc, flate.DefaultCompression)
	if err != nil {
		if wc != os.Stdout {
			_ = wc.Close()
		}
		return nil, err
	}
	return &OutputFile{wc: wc, bgzf: writer, Writer: bufio.NewWriter(writer)}, nil
}

// Close the VCF input file.
func (input *InputFile) Close() error {
	if input.bgzf != nil {
		if err := input.bgzf.Close(); err != nil {
			return err
		}
	}
	if input.rc != os.Stdin {
		return input.rc.Close()
	}
	return nil
}

// Close the VCF output file, flushing all buffered output.
func (output *OutputFile) Close() error {
	if err := output.Flush(); err != nil {
		return err
	}
	if output.bgzf != nil {
		if err := output.bgzf.Close(); err != nil {
			return err
		}
	}
	if output.wc != os.Stdout {
		return output.wc.Close()
	}
	return nil
}
