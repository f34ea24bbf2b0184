package merge

import (
	"fmt"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/dasnellings/mesic/rsq"
	"github.com/samber/lo"
	"github.com/vertgenlab/gonomics/vcf"
)

// VcfSamples returns the sample names in the header of a VCF.
func VcfSamples(path string) (names []string, err error) {
	file, err := input.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vcf: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return rsq.SampleNames(vcf.ReadHeader(file)), nil
}

// ReadSamples reads a sample file, one name per line.
func ReadSamples(path string) ([]string, error) {
	lines, err := input.Lines(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample list: %w", err)
	}
	names := lo.Map(lines, func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Without(names, ""), nil
}

// CheckSamples makes sure every sample named in a cohort's sample file is
// present in at least one of the manifest's VCFs. It returns the number of
// distinct samples found across the VCFs.
func CheckSamples(cohorts []Cohort) (int, error) {
	var found, listed, names []string
	var err error
	for _, c := range cohorts {
		if names, err = VcfSamples(c.Vcf); err != nil {
			return 0, err
		}
		found = append(found, names...)
		if c.Samples == "" {
			continue
		}
		if names, err = ReadSamples(c.Samples); err != nil {
			return 0, err
		}
		listed = append(listed, names...)
	}
	found = lo.Uniq(found)
	missing := lo.Without(lo.Uniq(listed), found...)
	if len(missing) > 0 {
		return len(found), &config.Error{Op: "merge", Column: "samples", Value: strings.Join(missing, ","), Err: config.ErrMissingSamples}
	}
	return len(found), nil
}
