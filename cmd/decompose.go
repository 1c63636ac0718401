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
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/exascience/vcfsplit/internal"
	"github.com/exascience/vcfsplit/vcf"
)

// DecomposeHelp is the help string for this command.
const DecomposeHelp = "decompose parameters:\n" +
	"vcfsplit decompose vcf-file output-file\n" +
	"[--nr-of-threads nr]\n" +
	"[--arity-overrides yaml-file]\n" +
	"[--max-warnings nr]\n" +
	"[--compress]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// warningLogger logs the first max warnings it receives.
func warningLogger(max int) vcf.WarningFunc {
	count := 0
	return func(w vcf.Warning) {
		count++
		switch {
		case count <= max:
			log.Println("Warning:", w)
		case count == max+1:
			log.Println("Warning: too many warnings, further warnings are not shown.")
		}
	}
}

func decomposeFile(input, output string, catalog *vcf.Catalog, nrOfThreads, maxWarnings int, compress bool) (err error) {
	in, err := vcf.Open(input)
	if err != nil {
		return err
	}
	defer internal.Close(in, &err)
	out, err := vcf.Create(output, compress)
	if err != nil {
		return err
	}
	defer internal.Close(out, &err)
	driver := vcf.NewDriver(catalog)
	driver.OnWarning = warningLogger(maxWarnings)
	var stats vcf.Stats
	if nrOfThreads == 1 {
		stats, err = driver.Run(in.Reader, out.Writer)
	} else {
		stats, err = driver.RunPipeline(in.Reader, out.Writer, nrOfThreads)
	}
	if err != nil {
		return fmt.Errorf("%w, while decomposing %v", err, input)
	}
	log.Printf("Read %v lines with %v declared INFO/FORMAT fields, %v samples and %v data records.\n",
		stats.Lines, driver.Catalog.Len(), len(driver.Samples), stats.Records)
	log.Printf("Decomposed %v multi-allelic records, wrote %v data records, %v warnings.\n",
		stats.Decomposed, stats.Emitted, stats.Warnings)
	return nil
}

// Decompose implements the vcfsplit decompose command.
func Decompose() error {
	var (
		nrOfThreads, maxWarnings         int
		arityOverrides, profile, logPath string
		compress, timed                  bool
	)

	var flags flag.FlagSet
	flags.IntVar(&nrOfThreads, "nr-of-threads", 1, "number of worker threads, 0 for all available cores")
	flags.StringVar(&arityOverrides, "arity-overrides", "", "YAML file declaring the Number of INFO and FORMAT fields")
	flags.IntVar(&maxWarnings, "max-warnings", 100, "maximum number of warnings to log")
	flags.BoolVar(&compress, "compress", false, "write BGZF-compressed output")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a CPU profile to the given file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 4, DecomposeHelp)

	input := getFilename(os.Args[2], DecomposeHelp)
	output := getFilename(os.Args[3], DecomposeHelp)

	if logPath != "" {
		if err := setLogOutput(logPath); err != nil {
			return err
		}
	}

	sanityChecksFailed := false
	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}
	if maxWarnings < 0 {
		log.Println("Error: Invalid max-warnings: ", maxWarnings)
		sanityChecksFailed = true
	}
	catalog := vcf.NewCatalog()
	if arityOverrides != "" {
		if !checkExist("--arity-overrides", arityOverrides) {
			sanityChecksFailed = true
		} else if overrides, err := LoadArityOverrides(arityOverrides); err != nil {
			log.Println("Error:", err)
			sanityChecksFailed = true
		} else if err := overrides.Apply(catalog); err != nil {
			log.Println("Error:", err)
			sanityChecksFailed = true
		}
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, DecomposeHelp)
		os.Exit(1)
	}

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " decompose ", input, " ", output)
	fmt.Fprint(&command, " --nr-of-threads ", strconv.Itoa(nrOfThreads))
	if arityOverrides != "" {
		fmt.Fprint(&command, " --arity-overrides ", arityOverrides)
	}
	fmt.Fprint(&command, " --max-warnings ", strconv.Itoa(maxWarnings))
	if compress {
		fmt.Fprint(&command, " --compress")
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}
	log.Println("Executing command:\n", command.String())

	return timedRun(timed, profile, "Decomposing multi-allelic VCF records.", func() error {
		return decomposeFile(input, output, catalog, nrOfThreads, maxWarnings, compress)
	})
}
