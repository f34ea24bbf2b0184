package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dasnellings/mesic/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertgenlab/gonomics/fileio"
)

type call struct {
	name string
	args []string
}

type recorder struct {
	calls  []call
	failOn string
}

func (r *recorder) Run(name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: args})
	if r.failOn != "" && args[0] == r.failOn {
		return fmt.Errorf("%s failed", r.failOn)
	}
	return nil
}

func writeFile(t *testing.T, path string, lines ...string) string {
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func writeVcf(t *testing.T, path string, samples ...string) string {
	return writeFile(t, path,
		"##fileformat=VCFv4.2",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t"+strings.Join(samples, "\t"),
		"chr7\t100\trs1\tA\tG\t.\tPASS\t.\tGT"+strings.Repeat("\t0|1", len(samples)),
	)
}

type cohortFiles struct {
	dir, manifest string
}

func setup(t *testing.T) cohortFiles {
	dir := t.TempDir()
	a := writeVcf(t, filepath.Join(dir, "a.vcf"), "S1", "S2")
	b := writeVcf(t, filepath.Join(dir, "b.vcf"), "S3")
	samples := writeFile(t, filepath.Join(dir, "keep.txt"), "S1", "S3", "")
	manifest := writeFile(t, filepath.Join(dir, "cohorts.csv"),
		expectedManifestHeader,
		a+","+filepath.Join(dir, "a.list")+","+samples,
		b+","+filepath.Join(dir, "b.list"),
	)
	return cohortFiles{dir: dir, manifest: manifest}
}

func TestReadManifest(t *testing.T) {
	f := setup(t)
	cohorts, err := ReadManifest(f.manifest, "/tmp/work")
	require.NoError(t, err)
	require.Len(t, cohorts, 2)
	assert.Equal(t, "/tmp/work/a_0.vcf.gz", cohorts[0].Temp)
	assert.Equal(t, filepath.Join(f.dir, "keep.txt"), cohorts[0].Samples)
	assert.Equal(t, "", cohorts[1].Samples)
	assert.Equal(t, "/tmp/work/b_1.vcf.gz", cohorts[1].Temp)
}

func TestReadManifestBadLine(t *testing.T) {
	dir := t.TempDir()
	for _, body := range []string{"only.vcf", "a,b,c,d", ",list", expectedManifestHeader} {
		path := writeFile(t, filepath.Join(dir, "m.csv"), body)
		_, err := ReadManifest(path, dir)
		assert.True(t, errors.Is(err, config.ErrBadManifest), body)
	}
}

func TestTempName(t *testing.T) {
	assert.Equal(t, "tmp/cohort.vcf_3.vcf.gz", tempName("tmp", "/data/cohort.vcf.gz", 3))
}

func TestCheckSamples(t *testing.T) {
	f := setup(t)
	cohorts, err := ReadManifest(f.manifest, f.dir)
	require.NoError(t, err)
	n, err := CheckSamples(cohorts)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cohorts[0].Samples = writeFile(t, filepath.Join(f.dir, "extra.txt"), "S1", "S7", "S8", "S7")
	_, err = CheckSamples(cohorts)
	var cfgErr *config.Error
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, config.ErrMissingSamples))
	assert.Equal(t, "S7,S8", cfgErr.Value)
}

func TestCheckSamplesFakeGzip(t *testing.T) {
	f := setup(t)
	cohorts, err := ReadManifest(f.manifest, f.dir)
	require.NoError(t, err)
	cohorts[1].Vcf = writeVcf(t, filepath.Join(f.dir, "c.vcf.gz"), "S3")
	_, err = CheckSamples(cohorts)
	assert.True(t, errors.Is(err, config.ErrNotGzip))
}

func TestArgs(t *testing.T) {
	c := Cohort{Vcf: "a.vcf.gz", Variants: "a.list", Samples: "s.txt", Temp: "t/a_0.vcf.gz"}
	assert.Equal(t, []string{"view", "-Oz", "-o", "t/a_0.vcf.gz", "-S", "s.txt", "--force-samples", "-i", "ID=@a.list", "a.vcf.gz"}, ViewArgs(c))
	c.Samples = ""
	assert.Equal(t, []string{"view", "-Oz", "-o", "t/a_0.vcf.gz", "-i", "ID=@a.list", "a.vcf.gz"}, ViewArgs(c))
	assert.Equal(t, []string{"-fp", "vcf", "x.vcf.gz"}, IndexArgs("x.vcf.gz"))
}

func TestRun(t *testing.T) {
	f := setup(t)
	cfg := config.Default()
	cfg.Merge.TempDir = f.dir
	out := filepath.Join(f.dir, "merged.vcf.gz")
	r := &recorder{}

	s, err := Run(Inputs{Manifest: f.manifest, Chrom: "7", Output: out}, cfg, r, nil)
	require.NoError(t, err)
	require.Len(t, r.calls, 5)
	assert.Equal(t, "bcftools", r.calls[0].name)
	assert.Equal(t, "tabix", r.calls[1].name)
	assert.Equal(t, IndexArgs(s.Subsets[1]), r.calls[3].args)

	list := filepath.Join(f.dir, "mergelist-7.txt")
	assert.Equal(t, list, s.MergeList)
	assert.Equal(t, s.Subsets, fileio.Read(list))
	assert.Equal(t, MergeArgs(list, out), r.calls[4].args)
	assert.Equal(t, 2, s.Cohorts)
	assert.Equal(t, 3, s.Samples)
}

func TestRunSnpsOnly(t *testing.T) {
	f := setup(t)
	cfg := config.Default()
	cfg.Merge.TempDir = f.dir
	cfg.Merge.SnpsOnly = true
	out := filepath.Join(f.dir, "merged.vcf.gz")
	r := &recorder{}

	_, err := Run(Inputs{Manifest: f.manifest, Chrom: "7", Output: out}, cfg, r, nil)
	require.NoError(t, err)
	require.Len(t, r.calls, 6)
	tmp := filepath.Join(f.dir, "merged-7.temp.vcf.gz")
	assert.Equal(t, MergeArgs(filepath.Join(f.dir, "mergelist-7.txt"), tmp), r.calls[4].args)
	assert.Equal(t, SnpArgs(tmp, out), r.calls[5].args)
}

func TestRunStopsOnFailure(t *testing.T) {
	f := setup(t)
	cfg := config.Default()
	cfg.Merge.TempDir = f.dir
	r := &recorder{failOn: "view"}

	_, err := Run(Inputs{Manifest: f.manifest, Chrom: "7", Output: filepath.Join(f.dir, "m.vcf.gz")}, cfg, r, nil)
	assert.Error(t, err)
	assert.Len(t, r.calls, 1)
	_, err = os.Stat(filepath.Join(f.dir, "mergelist-7.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunRejectsArguments(t *testing.T) {
	f := setup(t)
	r := &recorder{}
	_, err := Run(Inputs{Manifest: f.manifest, Chrom: "7", Output: "merged.vcf"}, config.Default(), r, nil)
	assert.True(t, errors.Is(err, config.ErrBadOutput))

	_, err = Run(Inputs{Manifest: f.manifest, Chrom: "chrX", Output: "merged.vcf.gz"}, config.Default(), r, nil)
	assert.True(t, errors.Is(err, config.ErrInvalidChromosome))
	assert.Empty(t, r.calls)
}
