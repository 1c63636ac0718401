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
	"errors"
	"fmt"
	"strings"

	"github.com/exascience/vcfsplit/utils"
)

const (
	metaLinePrefix = "##"
	idKey          = "ID"
	numberKey      = "Number"
)

// ErrCatalogSealed is returned when a declaration is added to a
// catalog after data lines have started.
var ErrCatalogSealed = errors.New("header catalog is sealed")

// ParseFieldSpec parses an ##INFO=<...> or ##FORMAT=<...> meta-line.
//
// isDeclaration is false for lines that are not INFO/FORMAT
// meta-lines; those are not an error. For declarations, err reports
// missing angle brackets, a missing ID or a missing Number. The order
// of the attributes is irrelevant.
func ParseFieldSpec(line string) (spec FieldSpec, isDeclaration bool, err error) {
	if !strings.HasPrefix(line, metaLinePrefix) {
		return spec, false, nil
	}
	var sc StringScanner
	sc.Reset(line[len(metaLinePrefix):])
	key, found := sc.readUntilByte('=')
	if !found {
		return spec, false, nil
	}
	switch key {
	case "INFO":
		spec.Role = Info
	case "FORMAT":
		spec.Role = Format
	default:
		return spec, false, nil
	}
	if c, ok := sc.peek(); !ok || c != '<' {
		return spec, true, fmt.Errorf("missing opening angle bracket in a VCF %v meta-information line: %v", key, line)
	}
	if !strings.HasSuffix(strings.TrimRight(line, " \r"), ">") {
		return spec, true, fmt.Errorf("missing closing angle bracket in a VCF %v meta-information line: %v", key, line)
	}
	sc.index++
	var id, number string
	var hasID, hasNumber bool
	for {
		k, v := sc.ParseMetaField()
		if serr := sc.Err(); serr != nil {
			return spec, true, serr
		}
		switch k {
		case idKey:
			if hasID {
				return spec, true, fmt.Errorf("multiple IDs in a VCF %v meta-information line: %v", key, line)
			}
			id, hasID = v, true
		case numberKey:
			if hasNumber {
				return spec, true, fmt.Errorf("multiple Number entries in a VCF %v meta-information line: %v", key, line)
			}
			number, hasNumber = v, true
		}
		sc.SkipSpace()
		c, _ := sc.peek()
		if c == ',' {
			sc.index++
			continue
		}
		if c == '>' {
			break
		}
		return spec, true, fmt.Errorf("invalid syntax in a VCF %v meta-information line: %v", key, line)
	}
	if !hasID || id == "" {
		return spec, true, fmt.Errorf("missing ID in a VCF %v meta-information line: %v", key, line)
	}
	if !hasNumber {
		return spec, true, fmt.Errorf("missing Number entry in a VCF %v meta-information line: %v", key, line)
	}
	spec.ID = id
	spec.Arity = ParseArity(number)
	return spec, true, nil
}

type catalogKey struct {
	role Role
	id   utils.Symbol
}

// A Catalog maps INFO and FORMAT identifiers to their declared arity.
//
// A Catalog is filled while the header is read and sealed when the
// first data line is seen. A sealed Catalog is read-only and can be
// shared between goroutines.
type Catalog struct {
	fields    map[catalogKey]Arity
	overrides map[catalogKey]Arity
	sealed    bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		fields:    make(map[catalogKey]Arity),
		overrides: make(map[catalogKey]Arity),
	}
}

// Declare inserts or updates a field declaration.
func (catalog *Catalog) Declare(spec FieldSpec) error {
	if catalog.sealed {
		return ErrCatalogSealed
	}
	catalog.fields[catalogKey{spec.Role, utils.Intern(spec.ID)}] = spec.Arity
	return nil
}

// Override declares an arity that takes precedence over any
// declaration found in the header.
func (catalog *Catalog) Override(spec FieldSpec) error {
	if catalog.sealed {
		return ErrCatalogSealed
	}
	catalog.overrides[catalogKey{spec.Role, utils.Intern(spec.ID)}] = spec.Arity
	return nil
}

// AddMetaLine parses a header meta-line and declares the field it
// describes. Lines that are not INFO/FORMAT declarations are ignored.
// On error, the catalog is left unchanged.
func (catalog *Catalog) AddMetaLine(line string) error {
	spec, isDeclaration, err := ParseFieldSpec(line)
	if err != nil || !isDeclaration {
		return err
	}
	return catalog.Declare(spec)
}

// Seal makes the catalog read-only.
func (catalog *Catalog) Seal() {
	catalog.sealed = true
}

// Sealed reports whether the catalog is read-only.
func (catalog *Catalog) Sealed() bool {
	return catalog.sealed
}

// Len returns the number of declared fields, not counting overrides.
func (catalog *Catalog) Len() int {
	return len(catalog.fields)
}

// LookupSymbol returns the arity of an interned identifier, or
// Unknown if it is not declared.
func (catalog *Catalog) LookupSymbol(role Role, id utils.Symbol) Arity {
	key := catalogKey{role, id}
	if arity, ok := catalog.overrides[key]; ok {
		return arity
	}
	return catalog.fields[key]
}

// Lookup returns the arity of an identifier, or Unknown if it is not
// declared.
func (catalog *Catalog) Lookup(role Role, id string) Arity {
	return catalog.LookupSymbol(role, utils.Intern(id))
}
