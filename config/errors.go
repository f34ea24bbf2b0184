package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidChromosome = errors.New("invalid chromosome, accepts 1-22")
	ErrTooManyMalformed  = errors.New("too many malformed values, check the column number")
	ErrBadColumn         = errors.New("column numbers are 1-based and must be positive")
	ErrBadThreshold      = errors.New("threshold must be a finite number")
	ErrUnknownBaseline   = errors.New("unknown baseline preset, accepts tsim or mesic")
	ErrMissingSamples    = errors.New("samples not found in any vcf")
	ErrMissingField      = errors.New("format field not present for variant")
	ErrBadManifest       = errors.New("manifest lines are vcf,variant_list[,samples]")
	ErrBadOutput         = errors.New("merged output must end in .gz")
	ErrNotGzip           = errors.New("file has the .gz suffix but is not gzip compressed")
)

// Error is a fatal configuration problem: the run stops and a human is
// expected to fix the arguments. Value holds the offending input.
type Error struct {
	Op     string
	Column string
	Value  string
	Err    error
}

func (e *Error) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: %v (got %q)", e.Op, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %s: %v (last value %q)", e.Op, e.Column, e.Err, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Err
}
