// Package annot streams delimited annotation tables (allele frequencies,
// Rsq/ER2 pairs) into identifier keyed maps, keeping only rows that pass the
// configured thresholds.
package annot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/sirupsen/logrus"
)

const maxLineLen = 16 * 1024 * 1024

// Options control how rows are read. Zero values fall back to a tab
// delimiter and no progress reporting.
type Options struct {
	Delim        string
	MaxMalformed int
	ProgressStep int
	Log          logrus.FieldLogger
}

// Counts tallies what happened to every data row of one load.
type Counts struct {
	Rows               int  `yaml:"rows"`
	Kept               int  `yaml:"kept"`
	FailedPrimary      int  `yaml:"failed_primary"`
	FailedSecondary    int  `yaml:"failed_secondary"`
	Placeholder        int  `yaml:"placeholder"`
	Malformed          int  `yaml:"malformed"`
	MalformedSecondary int  `yaml:"malformed_secondary"`
	Short              int  `yaml:"short_rows"`
	Header             bool `yaml:"header_skipped"`
}

// Band keeps an identifier iff Margin <= value <= 1-Margin. Used for allele
// frequencies, so both rare reference and rare alternate alleles drop out.
type Band struct {
	ID     Column
	Value  Column
	Margin float64
}

// Pair keeps an identifier iff its primary value is >= PrimaryMin and its
// secondary value is either >= SecondaryMin or not available.
type Pair struct {
	ID           Column
	Primary      Column
	Secondary    Column
	PrimaryMin   float64
	SecondaryMin float64
}

type verdict int

const (
	keep verdict = iota
	failPrimary
	failSecondary
	skipPlaceholder
	badPrimary
	badSecondary
)

// rule judges one split row. The primary value is returned for kept rows,
// the offending text for malformed ones.
type rule interface {
	width() int
	idIndex() int
	primary() Column
	secondaryName() string
	judge(fields []string) (verdict, float64, string)
}

func (b Band) width() int {
	return max(b.ID.Index, b.Value.Index) + 1
}

func (b Band) idIndex() int {
	return b.ID.Index
}

func (b Band) primary() Column {
	return b.Value
}

func (b Band) secondaryName() string {
	return ""
}

func (b Band) judge(fields []string) (verdict, float64, string) {
	f := ParseField(fields[b.Value.Index])
	switch f.Kind {
	case Placeholder:
		return skipPlaceholder, 0, f.Raw
	case Malformed:
		return badPrimary, 0, f.Raw
	}
	if f.Value >= b.Margin && f.Value <= 1-b.Margin {
		return keep, f.Value, f.Raw
	}
	return failPrimary, f.Value, f.Raw
}

func (p Pair) width() int {
	return max(p.ID.Index, p.Primary.Index) + 1
}

func (p Pair) idIndex() int {
	return p.ID.Index
}

func (p Pair) primary() Column {
	return p.Primary
}

func (p Pair) secondaryName() string {
	return p.Secondary.Name
}

func (p Pair) judge(fields []string) (verdict, float64, string) {
	f := ParseField(fields[p.Primary.Index])
	switch f.Kind {
	case Placeholder:
		return skipPlaceholder, 0, f.Raw
	case Malformed:
		return badPrimary, 0, f.Raw
	}
	if !(f.Value >= p.PrimaryMin) {
		return failPrimary, f.Value, f.Raw
	}
	// a row too short to reach the secondary column has no secondary value
	if p.Secondary.Index >= len(fields) {
		return keep, f.Value, f.Raw
	}
	s := ParseField(fields[p.Secondary.Index])
	switch s.Kind {
	case Placeholder:
		return keep, f.Value, f.Raw
	case Malformed:
		return badSecondary, 0, s.Raw
	}
	if s.Value >= p.SecondaryMin {
		return keep, f.Value, f.Raw
	}
	return failSecondary, f.Value, s.Raw
}

// LoadBand reads r in one pass and returns the identifiers inside the band.
func LoadBand(r io.Reader, spec Band, opt Options) (*Map, Counts, error) {
	return load(r, spec, opt)
}

// LoadPair reads r in one pass and returns the identifiers passing both
// thresholds, valued by their primary column.
func LoadPair(r io.Reader, spec Pair, opt Options) (*Map, Counts, error) {
	return load(r, spec, opt)
}

// LoadBandFile is LoadBand on a file; names ending in .gz are decompressed.
func LoadBandFile(path string, spec Band, opt Options) (*Map, Counts, error) {
	return loadFile(path, spec, opt)
}

// LoadPairFile is LoadPair on a file; names ending in .gz are decompressed.
func LoadPairFile(path string, spec Pair, opt Options) (*Map, Counts, error) {
	return loadFile(path, spec, opt)
}

func loadFile(path string, spec rule, opt Options) (ans *Map, c Counts, err error) {
	file, err := input.Open(path)
	if err != nil {
		return nil, c, fmt.Errorf("opening table: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	if opt.Log != nil {
		opt.Log = opt.Log.WithField("file", path)
	}
	ans, c, err = load(file, spec, opt)
	return ans, c, err
}

func load(r io.Reader, spec rule, opt Options) (*Map, Counts, error) {
	var c Counts
	log := opt.Log
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	delim := opt.Delim
	if delim == "" {
		delim = "\t"
	}
	ans := NewMap()
	need := spec.width()
	col := spec.primary()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)

	var line, last string
	var fields []string
	first := true
	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields = strings.Split(line, delim)
		if len(fields) < need {
			c.Short++
			if c.Short > opt.MaxMalformed {
				return nil, c, &config.Error{Op: "load", Column: col.Name, Value: line, Err: config.ErrTooManyMalformed}
			}
			continue
		}

		v, val, raw := spec.judge(fields)
		if first {
			first = false
			if v == badPrimary {
				c.Header = true
				continue
			}
		}
		c.Rows++
		switch v {
		case keep:
			// the id must not pin the whole line in memory
			ans.Set(strings.Clone(fields[spec.idIndex()]), val)
			c.Kept++
		case failPrimary:
			c.FailedPrimary++
		case failSecondary:
			c.FailedSecondary++
		case skipPlaceholder:
			c.Placeholder++
		case badPrimary:
			c.Malformed++
			last = raw
			log.WithField("column", col.Name).Debugf("%s is not a number", raw)
			if c.Malformed > opt.MaxMalformed {
				return nil, c, &config.Error{Op: "load", Column: col.Name, Value: last, Err: config.ErrTooManyMalformed}
			}
		case badSecondary:
			c.MalformedSecondary++
			last = raw
			name := spec.secondaryName()
			log.WithField("column", name).Debugf("%s is not a number", raw)
			if c.MalformedSecondary > opt.MaxMalformed {
				return nil, c, &config.Error{Op: "load", Column: name, Value: last, Err: config.ErrTooManyMalformed}
			}
		}
		if opt.ProgressStep > 0 && c.Rows%opt.ProgressStep == 0 {
			log.Debugf("processed %d rows", c.Rows)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, c, fmt.Errorf("reading table: %w", err)
	}
	log.WithFields(logrus.Fields{
		"rows":      c.Rows,
		"kept":      c.Kept,
		"malformed": c.Malformed + c.MalformedSecondary + c.Short,
	}).Infof("processed %d rows", c.Rows)
	return ans, c, nil
}
