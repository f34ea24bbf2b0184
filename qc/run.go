package qc

import (
	"io"

	"github.com/dasnellings/mesic/annot"
	"github.com/dasnellings/mesic/chrom"
	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/hwe"
	"github.com/dasnellings/mesic/output"
	"github.com/sirupsen/logrus"
)

// Inputs names the files of one cohort/chromosome QC run. Hwe is optional.
type Inputs struct {
	Chrom  string
	Rsq    string
	Maf    string
	Hwe    string
	Output string
}

// Summary is everything reported at the end of a run.
type Summary struct {
	Chrom          int          `yaml:"chrom"`
	Baseline       int          `yaml:"baseline"`
	Output         string       `yaml:"output"`
	Rsq            annot.Counts `yaml:"rsq"`
	Maf            annot.Counts `yaml:"maf"`
	Hwe            *hwe.Counts  `yaml:"hwe,omitempty"`
	NotInFrequency int          `yaml:"not_in_frequency"`
	ExcludedByHWE  int          `yaml:"excluded_by_hwe"`
	Accepted       int          `yaml:"accepted"`
	LowCount       bool         `yaml:"low_count"`
}

// Run loads the tables named by in, filters them with the thresholds of cfg
// and writes the accepted identifiers. Nothing is written if any input fails.
func Run(in Inputs, cfg config.Config, log logrus.FieldLogger) (Summary, error) {
	var s Summary
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	if err := cfg.Validate(); err != nil {
		return s, err
	}
	table, err := chrom.Preset(cfg.Baseline)
	if err != nil {
		return s, err
	}
	s.Chrom, s.Baseline, err = table.Lookup(in.Chrom)
	if err != nil {
		return s, err
	}
	s.Output = in.Output
	log = log.WithField("chrom", s.Chrom)

	rsqSpec, mafSpec, err := specs(cfg)
	if err != nil {
		return s, err
	}
	opt := annot.Options{
		MaxMalformed: cfg.Qc.MaxMalformed,
		ProgressStep: cfg.Qc.ProgressStep,
		Log:          log,
	}

	log.Info("loading rsqs")
	quality, rc, err := annot.LoadPairFile(in.Rsq, rsqSpec, opt)
	s.Rsq = rc
	if err != nil {
		return s, err
	}
	log.Info("loading allele frequencies")
	freq, mc, err := annot.LoadBandFile(in.Maf, mafSpec, opt)
	s.Maf = mc
	if err != nil {
		return s, err
	}

	var exclude Set
	if in.Hwe != "" {
		group := hwe.Unaffected
		if cfg.Qc.NoCases {
			group = hwe.AllSubjects
		}
		log.Info("loading hwe p-values")
		excl, hc, err := hwe.Load(in.Hwe, hwe.Options{
			Threshold:    cfg.Qc.HweFilter,
			Group:        group,
			MaxMalformed: cfg.Qc.MaxMalformed,
			ProgressStep: cfg.Qc.ProgressStep,
			Log:          log,
		})
		s.Hwe = &hc
		if err != nil {
			return s, err
		}
		exclude = excl
	}

	log.Info("finding high quality variants")
	d := Filter(quality, freq, exclude)
	s.NotInFrequency = d.NotInFrequency
	s.ExcludedByHWE = d.ExcludedByHWE
	s.Accepted = len(d.Accepted)

	if err = output.WriteList(in.Output, d.Accepted); err != nil {
		return s, err
	}
	report(log, cfg, s)
	s.LowCount = table.Advise(log, s.Chrom, s.Accepted)
	return s, nil
}

func specs(cfg config.Config) (annot.Pair, annot.Band, error) {
	var p annot.Pair
	var b annot.Band
	var err error
	if p.ID, err = annot.Col("rsq_id_col", cfg.Qc.RsqIdCol); err != nil {
		return p, b, err
	}
	if p.Primary, err = annot.Col("rsq_col", cfg.Qc.RsqCol); err != nil {
		return p, b, err
	}
	if p.Secondary, err = annot.Col("er2_col", cfg.Qc.Er2Col); err != nil {
		return p, b, err
	}
	p.PrimaryMin = cfg.Qc.RsqFilter
	p.SecondaryMin = cfg.Qc.Er2Filter
	if b.ID, err = annot.Col("maf_id_col", cfg.Qc.MafIdCol); err != nil {
		return p, b, err
	}
	if b.Value, err = annot.Col("maf_col", cfg.Qc.MafCol); err != nil {
		return p, b, err
	}
	b.Margin = cfg.Qc.MafFilter
	return p, b, nil
}

func report(log logrus.FieldLogger, cfg config.Config, s Summary) {
	log.Infof(" %d variants fail RSQ filter (%g)", s.Rsq.FailedPrimary, cfg.Qc.RsqFilter)
	log.Infof(" %d genotyped variants fail ER2 filter (%g)", s.Rsq.FailedSecondary, cfg.Qc.Er2Filter)
	log.Infof(" %d variants fail MAF filter (%g)", s.Maf.FailedPrimary, cfg.Qc.MafFilter)
	log.Infof(" %d quality-passing variants missing from the MAF table", s.NotInFrequency)
	if s.Hwe != nil {
		log.Infof(" %d variants fail HWE (%g), %d of them otherwise passing", s.Hwe.Excluded, cfg.Qc.HweFilter, s.ExcludedByHWE)
	}
	if n := s.Rsq.Malformed + s.Rsq.MalformedSecondary + s.Rsq.Short + s.Maf.Malformed + s.Maf.Short; n > 0 {
		log.Infof(" %d malformed rows tolerated", n)
	}
	log.WithField("accepted", s.Accepted).Infof(" %d variants pass all filters", s.Accepted)
}
