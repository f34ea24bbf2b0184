package rsq

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dasnellings/mesic/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertgenlab/gonomics/vcf"
	"gonum.org/v1/gonum/mat"
)

func TestCalculateWorkedExample(t *testing.T) {
	d := mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})
	term1 := Term1(2)
	assert.Equal(t, 0.25, term1)

	p := AlleleFreq(d)
	assert.InDelta(t, 0.25, p, 1e-12)

	got := Calculate(d, p, term1)
	assert.InDelta(t, 0.25*0.05/0.1875, got, 1e-12)
	assert.InDelta(t, 0.0667, got, 1e-4)
}

func TestCalculateDeterministic(t *testing.T) {
	d := mat.NewDense(3, 2, []float64{0.91, 0.02, 0.5, 0.5, 0.999, 0.001})
	p := AlleleFreq(d)
	first := Calculate(d, p, Term1(3))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Calculate(d, p, Term1(3)))
	}
}

func TestCalculateNotClamped(t *testing.T) {
	// noisy dosages outside [0,1] push the estimate above 1
	d := mat.NewDense(2, 2, []float64{1.2, 1.2, -0.2, -0.2})
	p := AlleleFreq(d)
	assert.InDelta(t, 0.5, p, 1e-12)
	assert.InDelta(t, 1.96, Calculate(d, p, Term1(2)), 1e-9)

	d = mat.NewDense(1, 2, []float64{1, 0})
	assert.InDelta(t, 1.0, Calculate(d, AlleleFreq(d), Term1(1)), 1e-12)
}

func TestEvaluateMonomorphic(t *testing.T) {
	for _, fill := range []float64{0, 1} {
		d := mat.NewDense(2, 2, []float64{fill, fill, fill, fill})
		e := Evaluate("rs1", d, "0.8", Placeholder, Term1(2))
		assert.True(t, e.Monomorphic)
		assert.Equal(t, []string{"rs1", "0", "-", "0.8", "-"}, e.Fields())
	}
}

func header(samples ...string) vcf.Header {
	return vcf.Header{Text: []string{
		"##fileformat=VCFv4.2",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t" + strings.Join(samples, "\t"),
	}}
}

func variant(id, info string, hds ...string) vcf.Vcf {
	v := vcf.Vcf{Chr: "chr7", Id: id, Info: info, Format: []string{"GT", "HDS"}}
	for _, h := range hds {
		v.Samples = append(v.Samples, vcf.Sample{FormatData: []string{"", h}})
	}
	return v
}

func feed(vs ...vcf.Vcf) <-chan vcf.Vcf {
	ch := make(chan vcf.Vcf, len(vs))
	for _, v := range vs {
		ch <- v
	}
	close(ch)
	return ch
}

func parse(t *testing.T, s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return f
}

func TestProcess(t *testing.T) {
	data := feed(
		variant("rs1", "AF=0.25;R2=0.91;ER2=0.97;TYPED", "0.1,0.2", "0.3,0.4"),
		variant("rs2", "AF=0;R2=0.1;IMPUTED", "0,0", "0,0"),
		variant("rs3", "R2=0.5", "1,0", "0,1"),
	)
	var buf bytes.Buffer
	s, err := Process(data, header("S1", "S2"), &buf, Options{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, Header, lines[0])

	rs1 := strings.Split(lines[1], "\t")
	assert.Equal(t, "rs1", rs1[0])
	assert.InDelta(t, 0.25, parse(t, rs1[1]), 1e-12)
	assert.InDelta(t, 0.0667, parse(t, rs1[2]), 1e-4)
	assert.Equal(t, "0.91", rs1[3])
	assert.Equal(t, "0.97", rs1[4])

	assert.Equal(t, "rs2\t0\t-\t0.1\t-", lines[2])
	assert.Equal(t, "rs3\t0.5\t1\t0.5\t-", lines[3])

	assert.Equal(t, 2, s.Samples)
	assert.Equal(t, 3, s.Variants)
	assert.Equal(t, 2, s.Polymorphic)
	assert.Equal(t, 1, s.Monomorphic)
}

func TestProcessSampleSubset(t *testing.T) {
	data := feed(variant("rs1", "R2=0.9", "0.1,0.2", "0.3,0.4", "1,1"))
	var buf bytes.Buffer
	s, err := Process(data, header("S1", "S2", "S3"), &buf, Options{Samples: []string{"S2", "S1", "S1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Samples)
	row := strings.Split(strings.Split(buf.String(), "\n")[1], "\t")
	assert.InDelta(t, 0.25, parse(t, row[1]), 1e-12)
}

func TestProcessMissingSamples(t *testing.T) {
	_, err := Process(feed(), header("S1"), &bytes.Buffer{}, Options{Samples: []string{"S1", "S9", "S8"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingSamples))
	var cfgErr *config.Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "S9,S8", cfgErr.Value)
}

func TestProcessMissingField(t *testing.T) {
	v := variant("rs1", "R2=0.9", "0.1,0.2")
	v.Format = []string{"GT", "DS"}
	_, err := Process(feed(v), header("S1"), &bytes.Buffer{}, Options{})
	assert.True(t, errors.Is(err, config.ErrMissingField))
}

func TestProcessBadDosage(t *testing.T) {
	_, err := Process(feed(variant("rs1", "", "0.1")), header("S1"), &bytes.Buffer{}, Options{})
	assert.Error(t, err)
	_, err = Process(feed(variant("rs1", "", "x,0.1")), header("S1"), &bytes.Buffer{}, Options{})
	assert.Error(t, err)
}

func TestFormatDataWithGT(t *testing.T) {
	v := vcf.Vcf{Id: "rs1", Format: []string{"GT", "HDS"}, Samples: []vcf.Sample{{FormatData: []string{"0.2,0.6"}}}}
	d := mat.NewDense(1, 2, nil)
	require.NoError(t, fillDosages(v, "HDS", []int{0}, d))
	assert.Equal(t, 0.6, d.At(0, 1))
}

func TestInfoValue(t *testing.T) {
	assert.Equal(t, "0.5", infoValue("AF=0.1;R2=0.5;TYPED", "R2"))
	assert.Equal(t, Placeholder, infoValue("AF=0.1;TYPED", "ER2"))
	assert.Equal(t, Placeholder, infoValue("ER2;R2=1", "ER2"))
	assert.Equal(t, Placeholder, infoValue(".", "R2"))
}

func writeVcf(t *testing.T, rows ...string) string {
	path := filepath.Join(t.TempDir(), "in.vcf")
	body := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunWritesTable(t *testing.T) {
	in := writeVcf(t,
		"chr7\t100\trs1\tA\tG\t50\tPASS\tR2=0.9\tGT:HDS\t0|1:0.1,0.2",
		"chr7\t200\trs2\tA\tG\t50\tPASS\tR2=0.8\tGT:HDS\t0|1:0.3,0.4")
	out := filepath.Join(t.TempDir(), "rsq.txt")

	s, err := Run(in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Variants)
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "rs1\t"))
}

func TestRunLeavesNoPartialTable(t *testing.T) {
	in := writeVcf(t,
		"chr7\t100\trs1\tA\tG\t50\tPASS\tR2=0.9\tGT:HDS\t0|1:0.1,0.2",
		"chr7\t200\trs2\tA\tG\t50\tPASS\tR2=0.9\tGT\t0|1")
	outDir := t.TempDir()
	out := filepath.Join(outDir, "rsq.txt")

	_, err := Run(in, out, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingField))
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no table and no partial file")
}

func TestRunFakeGzip(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.vcf.gz")
	require.NoError(t, os.WriteFile(in, []byte("##fileformat=VCFv4.2\n"), 0644))
	outDir := t.TempDir()

	_, err := Run(in, filepath.Join(outDir, "rsq.txt"), Options{})
	assert.True(t, errors.Is(err, config.ErrNotGzip))
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
