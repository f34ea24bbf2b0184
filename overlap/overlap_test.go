package overlap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dasnellings/mesic/chrom"
	"github.com/dasnellings/mesic/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertgenlab/gonomics/fileio"
)

func list(t *testing.T, dir, name string, ids ...string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(ids, "\n")+"\n"), 0644))
	return path
}

func tsim(t *testing.T) chrom.Table {
	tbl, err := chrom.Preset("tsim")
	require.NoError(t, err)
	return tbl
}

func TestIntersectProperties(t *testing.T) {
	a := NewSet("A", "B", "C")
	b := NewSet("B", "C", "D")
	c := NewSet("B", "E")

	assert.Equal(t, Intersect(a, b), Intersect(b, a))
	assert.Equal(t, a, Intersect(a, a))
	assert.Equal(t, Intersect(Intersect(a, b), c), Intersect(a, Intersect(b, c)))
	assert.Empty(t, Intersect(a, NewSet()))
}

func TestReadSet(t *testing.T) {
	path := list(t, t.TempDir(), "a.txt", "rs1", "  rs2 ", "", "rs1")
	s, err := ReadSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"rs1", "rs2"}, s.Sorted())

	_, err = ReadSet(path + ".missing")
	assert.Error(t, err)
}

func TestReadSetFakeGzip(t *testing.T) {
	path := list(t, t.TempDir(), "a.txt.gz", "rs1", "rs2")
	_, err := ReadSet(path)
	assert.True(t, errors.Is(err, config.ErrNotGzip))
	_, err = ReadPaths(path)
	assert.True(t, errors.Is(err, config.ErrNotGzip))
}

func TestRunThreeCohorts(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		list(t, dir, "a.txt", "A", "B", "C"),
		list(t, dir, "b.txt", "B", "C", "D"),
		list(t, dir, "c.txt", "C", "B"),
	}
	out := filepath.Join(dir, "shared.txt.gz")
	log, hook := test.NewNullLogger()

	s, err := Run(paths, "7", tsim(t), out, log)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, fileio.Read(out))
	assert.Equal(t, []int{3, 3, 2}, s.Sizes)
	assert.Equal(t, 2, s.Shared)
	assert.True(t, s.LowCount)
	assert.Contains(t, hook.LastEntry().Message, "chromosome 7")
}

func TestRunOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	a := list(t, dir, "a.txt", "rs9", "rs1", "rs5")
	b := list(t, dir, "b.txt", "rs5", "rs9", "rs2")
	out1 := filepath.Join(dir, "1.txt")
	out2 := filepath.Join(dir, "2.txt")

	_, err := Run([]string{a, b}, "1", tsim(t), out1, nil)
	require.NoError(t, err)
	_, err = Run([]string{b, a}, "1", tsim(t), out2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"rs5", "rs9"}, fileio.Read(out1))
	assert.Equal(t, fileio.Read(out1), fileio.Read(out2))
}

func TestRunDuplicatePaths(t *testing.T) {
	dir := t.TempDir()
	a := list(t, dir, "a.txt", "rs1")
	_, err := Run([]string{a, a}, "1", tsim(t), filepath.Join(dir, "out.txt"), nil)
	assert.Error(t, err)

	b := list(t, dir, "b.txt", "rs1", "rs2")
	s, err := Run([]string{a, b, a}, "1", tsim(t), filepath.Join(dir, "out.txt"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, s.Lists)
}

func TestRunEmptyIntersection(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	_, err := Run([]string{list(t, dir, "a.txt", "A"), list(t, dir, "b.txt", "B")}, "2", tsim(t), out, nil)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestRunInvalidChromosome(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	_, err := Run([]string{list(t, dir, "a.txt", "A"), list(t, dir, "b.txt", "A")}, "23", tsim(t), out, nil)
	assert.True(t, errors.Is(err, config.ErrInvalidChromosome))
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestReadPaths(t *testing.T) {
	dir := t.TempDir()
	path := list(t, dir, "lists.txt", "a.txt", "", " b.txt ")
	got, err := ReadPaths(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, got)
}
