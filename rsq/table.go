package rsq

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dasnellings/mesic/config"
	"github.com/dasnellings/mesic/input"
	"github.com/dasnellings/mesic/output"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/vcf"
	"gonum.org/v1/gonum/mat"
)

// Header is the first line of the quality table.
const Header string = "ID\tAAF\tRSQ\tRSQ_TOPMED\tER2"

// Options for Run and Process.
type Options struct {
	DosageField  string   // FORMAT key holding "hap1,hap2" dosages, HDS for Minimac
	Samples      []string // restrict the estimate to these samples; empty means all
	ProgressStep int
	Log          logrus.FieldLogger
}

// Summary counts one pass over a dosage VCF.
type Summary struct {
	Vcf         string `yaml:"vcf"`
	Output      string `yaml:"output"`
	Samples     int    `yaml:"samples"`
	Variants    int    `yaml:"variants"`
	Polymorphic int    `yaml:"polymorphic"`
	Monomorphic int    `yaml:"monomorphic"`
}

// Fields renders e as a quality table row.
func (e Estimate) Fields() []string {
	if e.Monomorphic {
		return []string{e.ID, "0", Placeholder, e.RsqRef, e.Er2}
	}
	return []string{e.ID, formatFloat(e.AAF), formatFloat(e.Rsq), e.RsqRef, e.Er2}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Run streams the VCF at vcfPath and writes the quality table to outPath.
// The table only appears under outPath if every variant was processed.
func Run(vcfPath, outPath string, opt Options) (Summary, error) {
	if err := input.Check(vcfPath); err != nil {
		return Summary{}, fmt.Errorf("opening vcf: %w", err)
	}
	out, err := output.Create(outPath)
	if err != nil {
		return Summary{}, err
	}
	defer out.Abort()

	// the reader goroutine is abandoned if Process stops early; callers exit
	data, header := vcf.GoReadToChan(vcfPath)
	s, err := Process(data, header, out, opt)
	s.Vcf = vcfPath
	s.Output = outPath
	if err != nil {
		return s, err
	}
	return s, out.Commit()
}

// Process writes one quality table row per variant received on data, in
// arrival order.
func Process(data <-chan vcf.Vcf, header vcf.Header, w io.Writer, opt Options) (Summary, error) {
	var s Summary
	log := opt.Log
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	field := opt.DosageField
	if field == "" {
		field = "HDS"
	}

	names := SampleNames(header)
	idx, err := SelectSamples(names, opt.Samples)
	if err != nil {
		return s, err
	}
	s.Samples = len(idx)
	if s.Samples == 0 {
		return s, &config.Error{Op: "rsq", Value: "", Err: config.ErrMissingSamples}
	}
	log.WithField("samples", s.Samples).Infof("samples' head: %v", lo.Subset(selected(names, idx), 0, 5))

	term1 := Term1(s.Samples)
	d := mat.NewDense(s.Samples, 2, nil)
	bw := bufio.NewWriter(w)
	if _, err = fmt.Fprintln(bw, Header); err != nil {
		return s, err
	}

	var v vcf.Vcf
	var e Estimate
	for v = range data {
		s.Variants++
		if err = fillDosages(v, field, idx, d); err != nil {
			return s, err
		}
		e = Evaluate(v.Id, d, infoValue(v.Info, "R2"), infoValue(v.Info, "ER2"), term1)
		if e.Monomorphic {
			s.Monomorphic++
		} else {
			s.Polymorphic++
		}
		if _, err = fmt.Fprintln(bw, strings.Join(e.Fields(), "\t")); err != nil {
			return s, err
		}
		if opt.ProgressStep > 0 && s.Variants%opt.ProgressStep == 0 {
			log.Debugf("%d variants processed...", s.Variants)
		}
	}
	if err = bw.Flush(); err != nil {
		return s, err
	}

	log.WithFields(logrus.Fields{
		"variants":    s.Variants,
		"polymorphic": s.Polymorphic,
		"monomorphic": s.Monomorphic,
	}).Info("rsq calculations done")
	return s, nil
}

// SampleNames returns the sample columns of the #CHROM header line.
func SampleNames(header vcf.Header) []string {
	for i := len(header.Text) - 1; i >= 0; i-- {
		if strings.HasPrefix(header.Text[i], "#CHROM") {
			fields := strings.Split(header.Text[i], "\t")
			if len(fields) <= 9 {
				return nil
			}
			return fields[9:]
		}
	}
	return nil
}

// SelectSamples maps the wanted sample names to VCF column positions in VCF
// order. An empty want selects every sample. Unknown names are an error
// listing all of them.
func SelectSamples(names, want []string) ([]int, error) {
	if len(want) == 0 {
		return lo.Range(len(names)), nil
	}
	want = lo.Uniq(want)
	missing := lo.Without(want, names...)
	if len(missing) > 0 {
		return nil, &config.Error{Op: "rsq", Column: "samples", Value: strings.Join(missing, ","), Err: config.ErrMissingSamples}
	}
	keep := lo.SliceToMap(want, func(s string) (string, bool) { return s, true })
	var idx []int
	for i, n := range names {
		if keep[n] {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

func selected(names []string, idx []int) []string {
	return lo.Map(idx, func(i int, _ int) string { return names[i] })
}

// fillDosages loads the two haplotype dosages of every selected sample into d.
func fillDosages(v vcf.Vcf, field string, idx []int, d *mat.Dense) error {
	fi := lo.IndexOf(v.Format, field)
	if fi < 0 {
		return &config.Error{Op: "rsq", Column: field, Value: v.Id, Err: config.ErrMissingField}
	}
	var parts []string
	var k int
	var h0, h1 float64
	var err error
	for row, col := range idx {
		if col >= len(v.Samples) {
			return fmt.Errorf("variant %s: only %d samples, expected column %d", v.Id, len(v.Samples), col)
		}
		sample := v.Samples[col]
		// FormatData may omit the GT entry that is parsed into Alleles
		k = fi - (len(v.Format) - len(sample.FormatData))
		if k < 0 || k >= len(sample.FormatData) {
			return &config.Error{Op: "rsq", Column: field, Value: v.Id, Err: config.ErrMissingField}
		}
		parts = strings.Split(sample.FormatData[k], ",")
		if len(parts) != 2 {
			return fmt.Errorf("variant %s: %s %q is not two haploid dosages", v.Id, field, sample.FormatData[k])
		}
		if h0, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return fmt.Errorf("variant %s: %s: %w", v.Id, field, err)
		}
		if h1, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return fmt.Errorf("variant %s: %s: %w", v.Id, field, err)
		}
		d.Set(row, 0, h0)
		d.Set(row, 1, h1)
	}
	return nil
}

// infoValue returns the raw text of key in a VCF INFO column, or the
// placeholder when the key is absent or a flag.
func infoValue(info, key string) string {
	for _, kv := range strings.Split(info, ";") {
		k, val, found := strings.Cut(kv, "=")
		if k == key && found {
			return val
		}
	}
	return Placeholder
}
