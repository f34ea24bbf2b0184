// Package chrom holds the per-chromosome minimum variant counts used to warn
// when too few variants survive QC or overlap.
package chrom

import (
	"strconv"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Unknown is the sentinel chromosome for callers that do not know which
// autosome they are processing. Its baseline is 0, so it never warns.
const Unknown = 0

// Table maps an autosome number to its expected minimum variant count.
type Table map[int]int

// tsim is the default preset. Chromosome 7 is the measured count; the other
// autosomes are half of the mesic value.
var tsim = Table{
	Unknown: 0,
	1:       49800,
	2:       48450,
	3:       39700,
	4:       38050,
	5:       36350,
	6:       34200,
	7:       31870,
	8:       29050,
	9:       27700,
	10:      26800,
	11:      27050,
	12:      26700,
	13:      22900,
	14:      21450,
	15:      20400,
	16:      18100,
	17:      16700,
	18:      16100,
	19:      11750,
	20:      12900,
	21:      9350,
	22:      10200,
}

// mesic is the stricter preset, roughly twice tsim.
var mesic = Table{
	Unknown: 0,
	1:       99600,
	2:       96900,
	3:       79400,
	4:       76100,
	5:       72700,
	6:       68400,
	7:       63800,
	8:       58100,
	9:       55400,
	10:      53600,
	11:      54100,
	12:      53400,
	13:      45800,
	14:      42900,
	15:      40800,
	16:      36200,
	17:      33400,
	18:      32200,
	19:      23500,
	20:      25800,
	21:      18700,
	22:      20400,
}

// Preset returns a copy of the table registered under name, so callers can
// never change the presets.
func Preset(name string) (Table, error) {
	switch name {
	case "tsim", "":
		return lo.Assign(map[int]int(tsim)), nil
	case "mesic":
		return lo.Assign(map[int]int(mesic)), nil
	}
	return nil, &config.Error{Op: "baseline", Value: name, Err: config.ErrUnknownBaseline}
}

// Parse converts a user supplied label to an autosome number. Only the
// integers 1-22 are accepted.
func Parse(label string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil || n < 1 || n > 22 {
		return 0, &config.Error{Op: "chromosome", Value: label, Err: config.ErrInvalidChromosome}
	}
	return n, nil
}

// Lookup parses label and returns its baseline.
func (t Table) Lookup(label string) (int, int, error) {
	n, err := Parse(label)
	if err != nil {
		return 0, 0, err
	}
	return n, t[n], nil
}

// Baseline returns the count for an already parsed chromosome.
func (t Table) Baseline(chr int) int {
	return t[chr]
}

// Advise logs a warning when count is under the chromosome's baseline and
// reports whether it did. It never fails the run.
func (t Table) Advise(log logrus.FieldLogger, chr, count int) bool {
	want := t[chr]
	if count >= want {
		return false
	}
	log.WithFields(logrus.Fields{
		"chrom":    chr,
		"count":    count,
		"baseline": want,
	}).Warnf("low number of variants passing QC for chromosome %d (ideally want %d variants or more)", chr, want)
	return true
}
