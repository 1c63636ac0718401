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
	"fmt"
	"io"
	"strings"
)

const columnHeaderPrefix = "#CHROM"

// A Driver decomposes a VCF stream in a single pass. Header lines are
// copied and INFO/FORMAT declarations are added to the Catalog; the
// Catalog is sealed at the first data line. Data lines with several
// alternate alleles are replaced by one line per allele; all other
// lines are copied unchanged, in input order.
type Driver struct {
	Catalog *Catalog

	// OnWarning, if not nil, receives all warnings in input order.
	OnWarning WarningFunc

	// Samples holds the sample names of the #CHROM line, if any.
	Samples []string
}

// NewDriver creates a Driver. If catalog is nil, an empty one is used.
func NewDriver(catalog *Catalog) *Driver {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Driver{Catalog: catalog}
}

func getLine(reader *bufio.Reader) (line string, ok bool, err error) {
	line, err = reader.ReadString('\n')
	switch {
	case err == nil:
		line = line[:len(line)-1]
	case err == io.EOF:
		if line == "" {
			return "", false, nil
		}
		err = nil
	default:
		return "", false, err
	}
	return strings.TrimSuffix(line, "\r"), true, nil
}

func (driver *Driver) warner(stats *Stats) WarningFunc {
	return func(w Warning) {
		stats.Warnings++
		if driver.OnWarning != nil {
			driver.OnWarning(w)
		}
	}
}

func isHeaderLine(line string) bool {
	return line == "" || line[0] == HeaderMarker
}

// headerLine handles a blank or marker line while the header is read.
func (driver *Driver) headerLine(line string, lineNo int, warn WarningFunc) {
	switch {
	case strings.HasPrefix(line, metaLinePrefix):
		if err := driver.Catalog.AddMetaLine(line); err != nil {
			warn(Warning{Kind: HeaderParseWarning, Line: lineNo, Message: err.Error()})
		}
	case strings.HasPrefix(line, columnHeaderPrefix):
		columns := strings.Split(line, "\t")
		if len(columns) > MandatoryColumns+1 {
			driver.Samples = append(driver.Samples[:0], columns[MandatoryColumns+1:]...)
		}
	}
}

// runHeader copies the header to writer. It returns the first data
// line, if any, which has already been counted in stats.Lines.
func (driver *Driver) runHeader(reader *bufio.Reader, writer *bufio.Writer, stats *Stats, warn WarningFunc) (first string, more bool, err error) {
	for {
		line, ok, err := getLine(reader)
		if err != nil {
			return "", false, fmt.Errorf("%w, while reading a VCF header", err)
		}
		if !ok {
			driver.Catalog.Seal()
			return "", false, nil
		}
		stats.Lines++
		if !isHeaderLine(line) {
			driver.Catalog.Seal()
			return line, true, nil
		}
		stats.HeaderLines++
		driver.headerLine(line, stats.Lines, warn)
		if _, err := writer.WriteString(line); err != nil {
			return "", false, err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return "", false, err
		}
	}
}

// processDataLine handles any line once the header has been read.
func processDataLine(d *Decomposer, out []byte, line string, lineNo int, warn WarningFunc, stats *Stats) []byte {
	if isHeaderLine(line) {
		stats.HeaderLines++
		return appendLine(out, line)
	}
	return d.AppendDataLine(out, line, lineNo, warn, stats)
}

// Run reads a VCF stream from r and writes the decomposed stream to w.
//
// Only I/O errors are returned; malformed lines are reported as
// warnings and copied unchanged. Stats are valid even if an error is
// returned.
func (driver *Driver) Run(r io.Reader, w io.Writer) (stats Stats, err error) {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	warn := driver.warner(&stats)
	first, more, err := driver.runHeader(reader, writer, &stats, warn)
	if err != nil {
		return stats, err
	}
	if more {
		d := NewDecomposer(driver.Catalog)
		buf := processDataLine(d, nil, first, stats.Lines, warn, &stats)
		for {
			if _, err := writer.Write(buf); err != nil {
				return stats, err
			}
			line, ok, err := getLine(reader)
			if err != nil {
				return stats, fmt.Errorf("%w, while reading VCF data lines", err)
			}
			if !ok {
				break
			}
			stats.Lines++
			buf = processDataLine(d, buf[:0], line, stats.Lines, warn, &stats)
		}
	}
	return stats, writer.Flush()
}
