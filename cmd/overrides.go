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

package cmd

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/exascience/vcfsplit/vcf"
)

// ArityOverrides declares the Number of INFO and FORMAT fields,
// taking precedence over the header of the input file. Values use
// the Number= grammar: A, R, G, . or a non-negative integer.
//
//	info:
//	  AC: A
//	format:
//	  AD: R
type ArityOverrides struct {
	Info   map[string]string `yaml:"info"`
	Format map[string]string `yaml:"format"`
}

// ParseArityOverrides parses the YAML representation of ArityOverrides.
func ParseArityOverrides(data []byte) (*ArityOverrides, error) {
	var overrides ArityOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	return &overrides, nil
}

// LoadArityOverrides reads ArityOverrides from a YAML file.
func LoadArityOverrides(filename string) (*ArityOverrides, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	overrides, err := ParseArityOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("%w, while parsing %v", err, filename)
	}
	return overrides, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Specs returns the overrides as field specifications, INFO fields
// first, each sorted by ID.
func (overrides *ArityOverrides) Specs() ([]vcf.FieldSpec, error) {
	var specs []vcf.FieldSpec
	for _, group := range []struct {
		role   vcf.Role
		fields map[string]string
	}{{vcf.Info, overrides.Info}, {vcf.Format, overrides.Format}} {
		for _, id := range sortedKeys(group.fields) {
			number := group.fields[id]
			arity := vcf.ParseArity(number)
			if arity.Kind == vcf.Unknown {
				return nil, fmt.Errorf("invalid Number %q for %v field %v in arity overrides", number, group.role, id)
			}
			specs = append(specs, vcf.FieldSpec{ID: id, Role: group.role, Arity: arity})
		}
	}
	return specs, nil
}

// Apply adds the overrides to a catalog.
func (overrides *ArityOverrides) Apply(catalog *vcf.Catalog) error {
	specs, err := overrides.Specs()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := catalog.Override(spec); err != nil {
			return err
		}
	}
	return nil
}
