// Package hwe reads PLINK --hardy reports and collects the variants whose
// Hardy-Weinberg p-value is low enough to exclude them from QC.
package hwe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dasnellings/mesic/annot"
	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/fileio"
)

const plink1Header string = "CHR SNP TEST A1 A2 GENO O(HET) E(HET) P"

// Group selects which test rows of the report are used.
type Group int

const (
	// Unaffected uses the controls-only test, the default for case/control data.
	Unaffected Group = iota
	// AllSubjects is used when the cohort has no cases.
	AllSubjects
)

func (g Group) String() string {
	if g == AllSubjects {
		return "ALL"
	}
	return "UNAFF"
}

func (g Group) match(test string) bool {
	switch g {
	case AllSubjects:
		return test == "ALL" || strings.HasPrefix(test, "ALL(")
	default:
		return test == "UNAFF"
	}
}

// layout is the column arrangement of one report flavour. test is -1 when
// the report has no test-group column.
type layout struct {
	name  string
	id    int
	test  int
	p     int
	width int
}

var plink1 = layout{name: "plink1.9", id: 1, test: 2, p: 8, width: 9}

// Counts tallies one pass over a report.
type Counts struct {
	Layout    string `yaml:"layout"`
	Rows      int    `yaml:"rows"`
	Tested    int    `yaml:"tested"`
	Excluded  int    `yaml:"excluded"`
	Malformed int    `yaml:"malformed"`
}

// Options for Load. Threshold is inclusive: p <= Threshold excludes.
type Options struct {
	Threshold    float64
	Group        Group
	MaxMalformed int
	ProgressStep int
	Log          logrus.FieldLogger
}

// Load reads the report at path and returns the excluded variants keyed by
// identifier, valued by p-value, in file order.
func Load(path string, opt Options) (ans *annot.Map, c Counts, err error) {
	file, err := input.Open(path)
	if err != nil {
		return nil, c, fmt.Errorf("opening hwe report: %w", err)
	}
	log := opt.Log
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	log = log.WithField("file", path)

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	ans = annot.NewMap()
	l := plink1
	c.Layout = l.name
	var fields []string
	var lastBad string
	for line, done := fileio.EasyNextLine(file); !done; line, done = fileio.EasyNextLine(file) {
		fields = strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if isHeader(fields) {
			l, err = headerLayout(fields)
			if err != nil {
				return nil, c, err
			}
			c.Layout = l.name
			continue
		}

		c.Rows++
		if opt.ProgressStep > 0 && c.Rows%opt.ProgressStep == 0 {
			log.Debugf("processed %d lines", c.Rows)
		}
		p, ok := l.pvalue(fields)
		if !ok {
			c.Malformed++
			lastBad = line
			if len(fields) > l.p {
				lastBad = fields[l.p]
			}
			log.Debugf("%s is not a number", lastBad)
			if c.Malformed > opt.MaxMalformed {
				return nil, c, &config.Error{Op: "hwe", Column: "P", Value: lastBad, Err: config.ErrTooManyMalformed}
			}
			continue
		}
		if l.test >= 0 && !opt.Group.match(fields[l.test]) {
			continue
		}
		c.Tested++
		if p <= opt.Threshold {
			ans.Set(strings.Clone(fields[l.id]), p)
		}
	}
	c.Excluded = ans.Len()
	log.WithFields(logrus.Fields{
		"layout":   c.Layout,
		"group":    opt.Group.String(),
		"tested":   c.Tested,
		"excluded": c.Excluded,
	}).Infof("processed %d lines (may be multiple of total variants)", c.Rows)
	return ans, c, nil
}

func (l layout) pvalue(fields []string) (float64, bool) {
	if len(fields) < l.width {
		return 0, false
	}
	p, err := strconv.ParseFloat(fields[l.p], 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

func isHeader(fields []string) bool {
	return fields[0] == "CHR" || strings.HasPrefix(fields[0], "#")
}

// headerLayout picks the column arrangement announced by a header line.
func headerLayout(fields []string) (layout, error) {
	if strings.Join(fields, " ") == plink1Header {
		return plink1, nil
	}
	if fields[0] == "#CHROM" {
		l := layout{name: "plink2", id: -1, test: -1, p: -1}
		for i, f := range fields {
			switch f {
			case "ID":
				l.id = i
			case "P":
				l.p = i
			}
		}
		if l.id >= 0 && l.p >= 0 {
			l.width = max(l.id, l.p) + 1
			return l, nil
		}
	}
	return layout{}, &config.Error{Op: "hwe", Column: "header", Value: strings.Join(fields, " "), Err: config.ErrBadColumn}
}
