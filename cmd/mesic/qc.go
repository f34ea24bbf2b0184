package main

import (
	"flag"
	"fmt"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/qc"
	"github.com/sirupsen/logrus"
)

func qcUsage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Print(
			"mesic qc - Keep the variants of one cohort that pass the Rsq, ER2, MAF and HWE filters.\n" +
				"Usage:\n" +
				"./mesic qc [options] -chrom 7 -rsq rsq.txt -maf maf.txt [-hwe plink.hwe] -o keep.txt\n" +
				"Column numbers are 1-based.\n\n")
		fs.PrintDefaults()
	}
}

func qcCmd(args []string) {
	d := config.Default()
	fs := flag.NewFlagSet("qc", flag.ExitOnError)
	fs.Usage = qcUsage(fs)
	in := qc.Inputs{}
	fs.StringVar(&in.Chrom, "chrom", "", "Chromosome number, 1-22.")
	fs.StringVar(&in.Rsq, "rsq", "", "Quality table with Rsq and ER2 columns.")
	fs.StringVar(&in.Maf, "maf", "", "Allele frequency table.")
	fs.StringVar(&in.Hwe, "hwe", "", "Optional PLINK --hardy report.")
	fs.StringVar(&in.Output, "o", "", "Output list of accepted variants.")
	rsqFilter := fs.Float64("rsq_filter", d.Qc.RsqFilter, "Minimum Rsq.")
	er2Filter := fs.Float64("er2_filter", d.Qc.Er2Filter, "Minimum ER2 of genotyped variants.")
	mafFilter := fs.Float64("maf_filter", d.Qc.MafFilter, "Keep variants with maf_filter <= frequency <= 1-maf_filter.")
	hweFilter := fs.Float64("hwe_filter", d.Qc.HweFilter, "Exclude variants with HWE p-value <= hwe_filter.")
	rsqCol := fs.Int("rsq_col", d.Qc.RsqCol, "Rsq column of the quality table.")
	er2Col := fs.Int("er2_col", d.Qc.Er2Col, "ER2 column of the quality table.")
	rsqIdCol := fs.Int("rsq_id_col", d.Qc.RsqIdCol, "Variant ID column of the quality table.")
	mafCol := fs.Int("maf_col", d.Qc.MafCol, "Frequency column of the allele frequency table.")
	mafIdCol := fs.Int("maf_id_col", d.Qc.MafIdCol, "Variant ID column of the allele frequency table.")
	noCases := fs.Bool("nocases", d.Qc.NoCases, "Cohort has no cases, use the ALL rows of the HWE report instead of UNAFF.")
	maxMalformed := fs.Int("max_malformed", d.Qc.MaxMalformed, "Stop when more rows than this fail to parse in one column.")
	baseline := fs.String("baseline", d.Baseline, "Expected variant counts to warn against: tsim or mesic.")
	c := addCommon(fs)
	_ = fs.Parse(args)

	log := c.logger()
	if in.Chrom == "" || in.Rsq == "" || in.Maf == "" || in.Output == "" {
		fs.Usage()
		log.Fatal("ERROR: chromosome, rsq table, maf table and output are required (-chrom, -rsq, -maf, -o)")
	}
	requireFiles(log, in.Rsq, in.Maf)
	if in.Hwe != "" {
		requireFiles(log, in.Hwe)
	}
	cfg := c.load(fs, log, map[string]func(*config.Config){
		"rsq_filter":    func(cfg *config.Config) { cfg.Qc.RsqFilter = *rsqFilter },
		"er2_filter":    func(cfg *config.Config) { cfg.Qc.Er2Filter = *er2Filter },
		"maf_filter":    func(cfg *config.Config) { cfg.Qc.MafFilter = *mafFilter },
		"hwe_filter":    func(cfg *config.Config) { cfg.Qc.HweFilter = *hweFilter },
		"rsq_col":       func(cfg *config.Config) { cfg.Qc.RsqCol = *rsqCol },
		"er2_col":       func(cfg *config.Config) { cfg.Qc.Er2Col = *er2Col },
		"rsq_id_col":    func(cfg *config.Config) { cfg.Qc.RsqIdCol = *rsqIdCol },
		"maf_col":       func(cfg *config.Config) { cfg.Qc.MafCol = *mafCol },
		"maf_id_col":    func(cfg *config.Config) { cfg.Qc.MafIdCol = *mafIdCol },
		"nocases":       func(cfg *config.Config) { cfg.Qc.NoCases = *noCases },
		"max_malformed": func(cfg *config.Config) { cfg.Qc.MaxMalformed = *maxMalformed },
		"baseline":      func(cfg *config.Config) { cfg.Baseline = *baseline },
	})

	log.WithFields(logrus.Fields{
		"chrom":      in.Chrom,
		"rsq":        in.Rsq,
		"maf":        in.Maf,
		"hwe":        in.Hwe,
		"output":     in.Output,
		"rsq_filter": cfg.Qc.RsqFilter,
		"er2_filter": cfg.Qc.Er2Filter,
		"maf_filter": cfg.Qc.MafFilter,
		"hwe_filter": cfg.Qc.HweFilter,
		"nocases":    cfg.Qc.NoCases,
	}).Info("finding variants passing qc")

	s, err := qc.Run(in, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("ERROR: qc failed")
	}
	c.writeSummary(s)
}
