// Package overlap intersects the per-cohort lists of accepted variants for one
// chromosome.
package overlap

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dasnellings/mesic/chrom"
	"github.com/dasnellings/mesic/input"
	"github.com/dasnellings/mesic/output"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/fileio"
)

// Set is an unordered collection of variant identifiers.
type Set map[string]struct{}

// NewSet collapses ids into a Set.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in s.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members of s in lexicographic order.
func (s Set) Sorted() []string {
	ids := lo.Keys(s)
	sort.Strings(ids)
	return ids
}

// ReadSet reads one identifier per line. Surrounding whitespace is trimmed
// and blank lines are ignored.
func ReadSet(path string) (Set, error) {
	file, err := input.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening variant list: %w", err)
	}
	s := make(Set)
	var id string
	for line, done := fileio.EasyNextLine(file); !done; line, done = fileio.EasyNextLine(file) {
		id = strings.TrimSpace(line)
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	if err = file.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", path, err)
	}
	return s, nil
}

// Intersect returns the identifiers present in both a and b.
func Intersect(a, b Set) Set {
	if len(b) < len(a) {
		a, b = b, a
	}
	ans := make(Set, len(a))
	for id := range a {
		if b.Contains(id) {
			ans[id] = struct{}{}
		}
	}
	return ans
}

// Summary is what Run reports.
type Summary struct {
	Chrom    int      `yaml:"chrom"`
	Baseline int      `yaml:"baseline"`
	Lists    []string `yaml:"lists"`
	Sizes    []int    `yaml:"sizes"`
	Output   string   `yaml:"output"`
	Shared   int      `yaml:"shared"`
	LowCount bool     `yaml:"low_count"`
}

// Run intersects the variant lists at paths and writes the shared identifiers,
// sorted, to out. Repeated paths are read once; at least two distinct lists
// are required. Only the running intersection and the list being read are
// held in memory.
func Run(paths []string, label string, table chrom.Table, out string, log logrus.FieldLogger) (Summary, error) {
	var s Summary
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	var err error
	if s.Chrom, s.Baseline, err = table.Lookup(label); err != nil {
		return s, err
	}
	s.Output = out
	s.Lists = lo.Uniq(paths)
	if len(s.Lists) < 2 {
		return s, fmt.Errorf("need at least two distinct variant lists, got %d", len(s.Lists))
	}
	log = log.WithField("chrom", s.Chrom)

	var shared, next Set
	for i, path := range s.Lists {
		if next, err = ReadSet(path); err != nil {
			return s, err
		}
		s.Sizes = append(s.Sizes, len(next))
		log.WithField("file", path).Infof("%d variants", len(next))
		if i == 0 {
			shared = next
			continue
		}
		shared = Intersect(shared, next)
		log.Debugf("%d variants shared after %d lists", len(shared), i+1)
	}

	ids := shared.Sorted()
	s.Shared = len(ids)
	if err = output.WriteList(out, ids); err != nil {
		return s, err
	}
	log.WithField("shared", s.Shared).Infof("%d variants shared by %d lists", s.Shared, len(s.Lists))
	s.LowCount = table.Advise(log, s.Chrom, s.Shared)
	return s, nil
}

// ReadPaths reads a list of list paths, one per line, as given to -l.
func ReadPaths(path string) ([]string, error) {
	lines, err := input.Lines(path)
	if err != nil {
		return nil, fmt.Errorf("opening list of lists: %w", err)
	}
	return lo.Filter(lo.Map(lines, func(l string, _ int) string {
		return strings.TrimSpace(l)
	}), func(l string, _ int) bool {
		return l != ""
	}), nil
}
