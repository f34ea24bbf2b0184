package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/dasnellings/mesic/output"
	"github.com/dasnellings/mesic/rsq"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

func rsqUsage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Print(
			"mesic rsq - Re-estimate imputation quality (Rsq) of every variant from haploid dosages.\n" +
				"Usage:\n" +
				"./mesic rsq [options] -vcf dosages.vcf.gz -o rsq.txt\n\n")
		fs.PrintDefaults()
	}
}

func rsqCmd(args []string) {
	fs := flag.NewFlagSet("rsq", flag.ExitOnError)
	fs.Usage = rsqUsage(fs)
	vcfFile := fs.String("vcf", "", "Imputed VCF with haploid dosages in a FORMAT field.")
	samplesFile := fs.String("samples", "", "Restrict the estimate to the samples in this file, one per line.")
	field := fs.String("field", "HDS", "FORMAT field holding the two haploid dosages.")
	out := fs.String("o", output.Stdout, "Output quality table.")
	c := addCommon(fs)
	_ = fs.Parse(args)

	log := c.logger()
	if *vcfFile == "" {
		fs.Usage()
		log.Fatal("ERROR: an input vcf is required (-vcf)")
	}
	requireFiles(log, *vcfFile)
	cfg := c.load(fs, log, map[string]func(*config.Config){
		"field": func(cfg *config.Config) { cfg.Rsq.DosageField = *field },
	})

	var samples []string
	if *samplesFile != "" {
		requireFiles(log, *samplesFile)
		lines, err := input.Lines(*samplesFile)
		if err != nil {
			log.WithError(err).Fatal("ERROR: reading samples failed")
		}
		samples = lo.Without(lo.Map(lines, func(s string, _ int) string {
			return strings.TrimSpace(s)
		}), "")
	}
	log.WithFields(logrus.Fields{
		"vcf":     *vcfFile,
		"samples": *samplesFile,
		"field":   cfg.Rsq.DosageField,
		"output":  *out,
	}).Info("calculating rsq")

	s, err := rsq.Run(*vcfFile, *out, rsq.Options{
		DosageField:  cfg.Rsq.DosageField,
		Samples:      samples,
		ProgressStep: cfg.Rsq.ProgressStep,
		Log:          log,
	})
	if err != nil {
		log.WithError(err).Fatal("ERROR: rsq failed")
	}
	c.writeSummary(s)
}
