package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/merge"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
)

func mergeUsage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Print(
			"mesic merge - Subset every cohort to its accepted variants and merge them with bcftools.\n" +
				"Usage:\n" +
				"./mesic merge [options] -chrom 7 -l cohorts.csv -o merged.vcf.gz\n" +
				"Each line of the cohort file is vcf,variant_list[,samples].\n\n")
		fs.PrintDefaults()
	}
}

func mergeCmd(args []string) {
	d := config.Default()
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	fs.Usage = mergeUsage(fs)
	in := merge.Inputs{}
	fs.StringVar(&in.Chrom, "chrom", "", "Chromosome number, 1-22.")
	fs.StringVar(&in.Manifest, "l", "", "Cohort file, one vcf,variant_list[,samples] per line.")
	fs.StringVar(&in.Output, "o", "", "Merged output, must end in .gz.")
	tempDir := fs.String("tempdir", d.Merge.TempDir, "Directory for the per-cohort subsets and the merge list.")
	snpsOnly := fs.Bool("snpsonly", d.Merge.SnpsOnly, "Keep only SNPs in the merged output.")
	bcftools := fs.String("bcftools", d.Merge.Bcftools, "bcftools binary path.")
	tabix := fs.String("tabix", d.Merge.Tabix, "tabix binary path.")
	c := addCommon(fs)
	_ = fs.Parse(args)

	log := c.logger()
	if in.Chrom == "" || in.Manifest == "" || in.Output == "" {
		fs.Usage()
		log.Fatal("ERROR: chromosome, cohort file and output are required (-chrom, -l, -o)")
	}
	requireFiles(log, in.Manifest)
	cfg := c.load(fs, log, map[string]func(*config.Config){
		"tempdir":  func(cfg *config.Config) { cfg.Merge.TempDir = *tempDir },
		"snpsonly": func(cfg *config.Config) { cfg.Merge.SnpsOnly = *snpsOnly },
		"bcftools": func(cfg *config.Config) { cfg.Merge.Bcftools = *bcftools },
		"tabix":    func(cfg *config.Config) { cfg.Merge.Tabix = *tabix },
	})
	simpleUtil.CheckErr(os.MkdirAll(cfg.Merge.TempDir, 0755))

	s, err := merge.Run(in, cfg, merge.Exec{Log: log}, log)
	if err != nil {
		log.WithError(err).Fatal("ERROR: merge failed")
	}
	c.writeSummary(s)
}
