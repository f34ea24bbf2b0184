// Package qc decides which variants of one cohort are trustworthy by
// combining imputation quality, allele frequency and Hardy-Weinberg tests.
package qc

import (
	"github.com/dasnellings/mesic/annot"
)

// Set answers membership questions about variant identifiers.
type Set interface {
	Contains(id string) bool
}

// Decision is the outcome of Filter. Accepted keeps the order of the
// quality map.
type Decision struct {
	Accepted        []string
	NotInFrequency  int
	ExcludedByHWE   int
	QualityVariants int
}

// Filter accepts every identifier of quality that is also in freq and, when
// exclude is not nil, absent from exclude.
func Filter(quality *annot.Map, freq Set, exclude Set) Decision {
	d := Decision{QualityVariants: quality.Len()}
	quality.Each(func(id string, _ float64) {
		if !freq.Contains(id) {
			d.NotInFrequency++
			return
		}
		if exclude != nil && exclude.Contains(id) {
			d.ExcludedByHWE++
			return
		}
		d.Accepted = append(d.Accepted, id)
	})
	return d
}
