// Package merge subsets every cohort VCF to its accepted variants and merges
// the cohorts with bcftools.
package merge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/vertgenlab/gonomics/fileio"
)

const expectedManifestHeader string = "vcf,variant_list,samples"

// Cohort is one line of the manifest. Samples is empty when every sample of
// the VCF is kept. Temp is where the subset VCF is written.
type Cohort struct {
	Vcf      string
	Variants string
	Samples  string
	Temp     string
}

// ReadManifest parses a manifest of "vcf,variant_list[,samples]" lines. A
// header line is optional. Subset VCFs are named after their source inside
// tempDir.
func ReadManifest(filename, tempDir string) (ans []Cohort, err error) {
	file, err := input.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", filename, cerr)
		}
	}()

	var c Cohort
	for line, done := fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		line = strings.TrimSpace(line)
		if line == "" || (len(ans) == 0 && line == expectedManifestHeader) {
			continue
		}
		if c, err = processManifestLine(line); err != nil {
			return nil, err
		}
		c.Temp = tempName(tempDir, c.Vcf, len(ans))
		ans = append(ans, c)
	}
	if len(ans) == 0 {
		return nil, &config.Error{Op: "manifest", Value: filename, Err: config.ErrBadManifest}
	}
	return ans, nil
}

func processManifestLine(s string) (Cohort, error) {
	var ans Cohort
	fields := strings.Split(s, ",")
	if len(fields) != 2 && len(fields) != 3 {
		return ans, &config.Error{Op: "manifest", Value: s, Err: config.ErrBadManifest}
	}
	ans.Vcf = strings.TrimSpace(fields[0])
	ans.Variants = strings.TrimSpace(fields[1])
	if len(fields) == 3 {
		ans.Samples = strings.TrimSpace(fields[2])
	}
	if ans.Vcf == "" || ans.Variants == "" {
		return ans, &config.Error{Op: "manifest", Value: s, Err: config.ErrBadManifest}
	}
	return ans, nil
}

// tempName strips the last extension of vcf, so cohort.vcf.gz becomes
// cohort.vcf_<i>.vcf.gz. The index keeps cohorts with equal names apart.
func tempName(dir, vcf string, i int) string {
	base := filepath.Base(vcf)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s_%d.vcf.gz", base, i))
}
