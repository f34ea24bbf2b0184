package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/dasnellings/mesic/output"
	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/version"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/exception"
)

func usage() {
	fmt.Print(
		"mesic - Post-imputation quality control of cohorts split by chromosome.\n" +
			"Usage:\n" +
			"./mesic rsq [options] -vcf dosages.vcf.gz -o rsq.txt\n" +
			"./mesic qc [options] -chrom 7 -rsq rsq.txt -maf maf.txt [-hwe plink.hwe] -o keep.txt\n" +
			"./mesic overlap [options] -chrom 7 -o shared.txt keepA.txt keepB.txt [...]\n" +
			"./mesic merge [options] -chrom 7 -l cohorts.csv -o merged.vcf.gz\n\n" +
			"Run './mesic <command> -h' to list the options of a command.\n")
}

var commands = map[string]func(args []string){
	"rsq":     rsqCmd,
	"qc":      qcCmd,
	"overlap": overlapCmd,
	"merge":   mergeCmd,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		logrus.Fatal("ERROR: a command is required")
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		usage()
		names := lo.Keys(commands)
		sort.Strings(names)
		logrus.Fatalf("ERROR: unknown command %q, expected one of %v", os.Args[1], names)
	}
	run(os.Args[2:])
}

// common holds the flags shared by every command.
type common struct {
	config  *string
	summary *string
	verbose *bool
}

func addCommon(fs *flag.FlagSet) common {
	return common{
		config:  fs.String("config", "", "TOML file with run parameters. Environment variables MESIC_* and set flags take precedence."),
		summary: fs.String("summary", "", "Write counts of the run to this YAML file."),
		verbose: fs.Bool("verbose", false, "Log progress and per-row details."),
	}
}

// logger writes to standard error; standard out is reserved for "-o stdout".
func (c common) logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if *c.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	version.LogVersion()
	return log
}

// load layers the config file and environment over the defaults, then applies
// every flag the user set on the command line.
func (c common) load(fs *flag.FlagSet, log *logrus.Logger, overrides map[string]func(*config.Config)) config.Config {
	cfg, err := config.Load(*c.config)
	if err != nil {
		log.WithError(err).Fatal("ERROR: could not load configuration")
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply(&cfg)
		}
	})
	if err = cfg.Validate(); err != nil {
		log.WithError(err).Fatal("ERROR: invalid parameters")
	}
	return cfg
}

func (c common) writeSummary(s interface{}) {
	exception.PanicOnErr(output.WriteSummary(*c.summary, s))
}

// requireFiles stops the run before any work if an input is missing.
func requireFiles(log *logrus.Logger, paths ...string) {
	for _, p := range paths {
		if !osUtil.FileExists(p) {
			log.WithField("file", p).Fatal("ERROR: input file does not exist")
		}
		if err := input.Check(p); err != nil {
			log.WithError(err).WithField("file", p).Fatal("ERROR: cannot read input file")
		}
	}
}
