package merge

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dasnellings/mesic/chrom"
	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/output"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Runner executes one external command.
type Runner interface {
	Run(name string, args ...string) error
}

// Exec runs commands on the host, forwarding their output.
type Exec struct {
	Log logrus.FieldLogger
}

func (e Exec) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if e.Log != nil {
		e.Log.WithField("cmd", cmd.String()).Info("running")
	}
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// Inputs names the files of one merge.
type Inputs struct {
	Manifest string
	Chrom    string
	Output   string
}

// Summary is what Run reports.
type Summary struct {
	Chrom     int      `yaml:"chrom"`
	Cohorts   int      `yaml:"cohorts"`
	Samples   int      `yaml:"samples"`
	Subsets   []string `yaml:"subsets"`
	MergeList string   `yaml:"merge_list"`
	SnpsOnly  bool     `yaml:"snps_only"`
	Output    string   `yaml:"output"`
}

// ViewArgs subsets a cohort VCF to the variants in its list and, when a
// sample file is given, to those samples.
func ViewArgs(c Cohort) []string {
	args := []string{"view", "-Oz", "-o", c.Temp}
	if c.Samples != "" {
		args = append(args, "-S", c.Samples, "--force-samples")
	}
	return append(args, "-i", "ID=@"+c.Variants, c.Vcf)
}

// IndexArgs builds the tabix arguments indexing a bgzipped VCF.
func IndexArgs(path string) []string {
	return []string{"-fp", "vcf", path}
}

// MergeArgs merges the VCFs listed in list without joining multiallelic
// records.
func MergeArgs(list, out string) []string {
	return []string{"merge", "-m", "none", "-Oz", "-o", out, "-l", list}
}

// SnpArgs keeps only the SNPs of in.
func SnpArgs(in, out string) []string {
	return []string{"view", "-Oz", "-o", out, "-i", `TYPE="snp"`, in}
}

// Run subsets every cohort in the manifest, indexes the subsets and merges
// them into in.Output. Any failing step stops the run.
func Run(in Inputs, cfg config.Config, r Runner, log logrus.FieldLogger) (Summary, error) {
	var s Summary
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	var err error
	if s.Chrom, err = chrom.Parse(in.Chrom); err != nil {
		return s, err
	}
	if !strings.HasSuffix(in.Output, ".gz") {
		return s, &config.Error{Op: "merge", Column: "output", Value: in.Output, Err: config.ErrBadOutput}
	}
	s.Output = in.Output
	s.SnpsOnly = cfg.Merge.SnpsOnly
	log = log.WithField("chrom", s.Chrom)

	cohorts, err := ReadManifest(in.Manifest, cfg.Merge.TempDir)
	if err != nil {
		return s, err
	}
	s.Cohorts = len(cohorts)
	log.WithFields(logrus.Fields{
		"manifest": in.Manifest,
		"cohorts":  s.Cohorts,
		"output":   in.Output,
		"temp_dir": cfg.Merge.TempDir,
	}).Info("merging vcf files")

	log.Info("checking that all samples are in the vcfs")
	if s.Samples, err = CheckSamples(cohorts); err != nil {
		return s, err
	}
	log.Info("all listed samples are in at least one vcf, bcftools warnings about missing samples can be ignored")

	for _, c := range cohorts {
		log.WithFields(logrus.Fields{
			"vcf":      c.Vcf,
			"samples":  c.Samples,
			"variants": c.Variants,
			"temp":     c.Temp,
		}).Info("formatting cohort")
		if err = r.Run(cfg.Merge.Bcftools, ViewArgs(c)...); err != nil {
			return s, err
		}
		if err = r.Run(cfg.Merge.Tabix, IndexArgs(c.Temp)...); err != nil {
			return s, err
		}
	}
	s.Subsets = lo.Map(cohorts, func(c Cohort, _ int) string { return c.Temp })

	s.MergeList = filepath.Join(cfg.Merge.TempDir, fmt.Sprintf("mergelist-%d.txt", s.Chrom))
	if err = output.WriteList(s.MergeList, s.Subsets); err != nil {
		return s, err
	}

	log.Info("merging cohorts")
	if !cfg.Merge.SnpsOnly {
		if err = r.Run(cfg.Merge.Bcftools, MergeArgs(s.MergeList, in.Output)...); err != nil {
			return s, err
		}
	} else {
		tmp := filepath.Join(cfg.Merge.TempDir, fmt.Sprintf("merged-%d.temp.vcf.gz", s.Chrom))
		if err = r.Run(cfg.Merge.Bcftools, MergeArgs(s.MergeList, tmp)...); err != nil {
			return s, err
		}
		log.Info("filtering for snps only")
		if err = r.Run(cfg.Merge.Bcftools, SnpArgs(tmp, in.Output)...); err != nil {
			return s, err
		}
	}
	log.WithField("output", in.Output).Info("merging done")
	return s, nil
}
