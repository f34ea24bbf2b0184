package main

import (
	"flag"
	"fmt"

	"github.com/dasnellings/mesic/chrom"
	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/overlap"
)

func overlapUsage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Print(
			"mesic overlap - Find the variants accepted by every cohort.\n" +
				"Usage:\n" +
				"./mesic overlap [options] -chrom 7 -o shared.txt keepA.txt keepB.txt [...]\n" +
				"./mesic overlap [options] -chrom 7 -o shared.txt -l lists.txt\n" +
				"./mesic overlap [options] -chrom 7 -o shared.txt -a keepA.txt -b keepB.txt\n\n")
		fs.PrintDefaults()
	}
}

func overlapCmd(args []string) {
	fs := flag.NewFlagSet("overlap", flag.ExitOnError)
	fs.Usage = overlapUsage(fs)
	label := fs.String("chrom", "", "Chromosome number, 1-22.")
	lists := fs.String("l", "", "File listing the variant lists to intersect, one path per line.")
	a := fs.String("a", "", "First variant list.")
	b := fs.String("b", "", "Second variant list.")
	out := fs.String("o", "", "Output list of shared variants, sorted.")
	baseline := fs.String("baseline", config.Default().Baseline, "Expected variant counts to warn against: tsim or mesic.")
	c := addCommon(fs)
	_ = fs.Parse(args)

	log := c.logger()
	if *label == "" || *out == "" {
		fs.Usage()
		log.Fatal("ERROR: chromosome and output are required (-chrom, -o)")
	}
	var paths []string
	if *lists != "" {
		requireFiles(log, *lists)
		more, err := overlap.ReadPaths(*lists)
		if err != nil {
			log.WithError(err).Fatal("ERROR: could not read list of variant lists")
		}
		paths = append(paths, more...)
	}
	for _, p := range []string{*a, *b} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, fs.Args()...)
	requireFiles(log, paths...)

	cfg := c.load(fs, log, map[string]func(*config.Config){
		"baseline": func(cfg *config.Config) { cfg.Baseline = *baseline },
	})
	table, err := chrom.Preset(cfg.Baseline)
	if err != nil {
		log.WithError(err).Fatal("ERROR: invalid parameters")
	}

	log.WithField("lists", len(paths)).Info("finding overlapping variants")
	s, err := overlap.Run(paths, *label, table, *out, log)
	if err != nil {
		log.WithError(err).Fatal("ERROR: overlap failed")
	}
	c.writeSummary(s)
}
