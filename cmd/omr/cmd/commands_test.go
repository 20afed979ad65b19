package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/pipeline"
	"github.com/MeKo-Tech/gabarito/internal/region"
)

const regionText = "Q1| 0.25 0.5 0.75 0.75 1 4 0 0 0\nNome| 0 0 0.5 0.25 1 1 0 1 0\n"

func TestRegionsConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "regions.txt")
	yml := filepath.Join(dir, "regions.yaml")
	back := filepath.Join(dir, "back.txt")
	require.NoError(t, os.WriteFile(txt, []byte(regionText), 0o600))

	output, err := execute(t, "regions", "convert", txt, yml)
	require.NoError(t, err)
	assert.Contains(t, output, "Converted 2 regions")

	_, err = execute(t, "regions", "convert", yml, back)
	require.NoError(t, err)

	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, regionText, string(data))

	regions, err := readRegionFile(yml)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.True(t, regions[1].IsWord)
}

func TestRegionsConvertBadInput(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "regions.txt")
	require.NoError(t, os.WriteFile(txt, []byte("no separator here\n"), 0o600))

	_, err := execute(t, "regions", "convert", txt, filepath.Join(dir, "out.yaml"))
	assert.Error(t, err)
}

func TestRegionsShow(t *testing.T) {
	txt := filepath.Join(t.TempDir(), "regions.txt")
	require.NoError(t, region.Save(txt, []region.Region{
		{Name: "Q1", X1: 0.25, Y1: 0.5, X2: 0.75, Y2: 0.75, Rows: 1, Columns: 4},
	}))

	output, err := execute(t, "regions", "show", txt, "--width", "400", "--height", "200")
	require.NoError(t, err)
	assert.Contains(t, output, "Q1 [answers] 1x4 questions=4 choices=1 crop=100,100+200x50 overlay=(100,-100)-(300,-50) grid=3")

	_, err = execute(t, "regions", "show", txt, "--width", "0", "--height", "200")
	assert.Error(t, err)
}

func TestAggregateCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	dest := filepath.Join(dir, "dest")
	require.NoError(t, os.MkdirAll(in, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(in, "page_2.png_answers.txt"), []byte("Q1 Subdivision 1: B\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "page_1.png_answers.txt"), []byte("Q1 Subdivision 1: A\n"), 0o600))

	output, err := execute(t, "aggregate", in, dest)
	require.NoError(t, err)
	assert.Contains(t, output, "Aggregated 2 files")

	data, err := os.ReadFile(filepath.Join(dest, "respostas.txt"))
	require.NoError(t, err)
	assert.Equal(t, "A,\nB,\n", string(data))
}

func TestRunCommandAggregateOnly(t *testing.T) {
	root := t.TempDir()
	answers := pipeline.Layout{Root: root}.Path(pipeline.DirAnswers)
	require.NoError(t, os.MkdirAll(answers, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(answers, "page_1.png_answers.txt"), []byte("Q1 Subdivision 1: C\n"), 0o600))

	output, err := execute(t, "run", "--workspace", root,
		"--skip-rasterize", "--skip-align", "--skip-denoise", "--skip-contours",
		"--skip-binarize", "--skip-answers", "--skip-words")
	require.NoError(t, err)
	assert.Contains(t, output, "aggregate done")
	assert.Contains(t, output, "rasterize skipped")

	data, err := os.ReadFile(filepath.Join(pipeline.Layout{Root: root}.Path(pipeline.DirResult), "respostas.txt"))
	require.NoError(t, err)
	assert.Equal(t, "C,\n", string(data))
}
