package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/region"
	"github.com/MeKo-Tech/gabarito/internal/testutil"
)

func TestEndToEndTwoPageExam(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}
	root := t.TempDir()
	sheet := testutil.DefaultSheet()

	reference := filepath.Join(root, "template.png")
	testutil.SaveImage(t, sheet.Template(), reference)
	input := filepath.Join(root, "exam.pdf")
	testutil.WritePDF(t, input, sheet.Marked(1), sheet.Marked(3))

	q1 := sheet.Region("Q1")
	regionsFile := filepath.Join(root, "regions.txt")
	require.NoError(t, region.Save(regionsFile, []region.Region{q1}))

	cfg := DefaultConfig()
	cfg.PDF = input
	cfg.Reference = reference
	cfg.Regions = regionsFile
	cfg.DPI = 72
	cfg.Workspace = filepath.Join(root, "ws")
	require.NoError(t, cfg.Validate())

	console := logsink.NewConsole()
	res := Run(context.Background(), Standard(cfg), console)
	require.NoError(t, res.Err, "logs: %v", console.Entries())
	for _, s := range res.Stages {
		assert.Equal(t, StatusCompleted, s.Status, s.Name)
	}

	layout := Layout{Root: cfg.Workspace}
	for page, want := range map[string]string{
		"page_1.png": "Q1 Subdivision 1: B\n",
		"page_2.png": "Q1 Subdivision 1: D\n",
	} {
		data, err := os.ReadFile(filepath.Join(layout.Path(DirAnswers), page+"_answers.txt"))
		require.NoError(t, err)
		assert.Equal(t, want, string(data), page)
	}

	for _, dir := range []string{DirRaw, DirAligned, DirDenoised, DirContours, DirThreshold, DirBinarized} {
		for _, page := range []string{"page_1.png", "page_2.png"} {
			assert.True(t, testutil.FileExists(filepath.Join(layout.Path(dir), page)), "%s/%s", dir, page)
		}
	}

	result, err := os.ReadFile(filepath.Join(layout.Path(DirResult), "respostas.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B,\nD,\n", string(result))

	t.Run("horizontal questions", func(t *testing.T) {
		q1.AnalyzeVertical = false
		require.NoError(t, region.Save(regionsFile, []region.Region{q1}))

		only := DefaultConfig()
		only.Regions = regionsFile
		only.Workspace = cfg.Workspace
		for _, name := range StageNames {
			only.Skip[name] = name != StageAnswers
		}
		res := Run(context.Background(), Standard(only), logsink.Discard)
		require.NoError(t, res.Err)

		data, err := os.ReadFile(filepath.Join(layout.Path(DirAnswers), "page_1.png_answers.txt"))
		require.NoError(t, err)
		got := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		assert.Len(t, got, 4)
		for i, l := range got {
			assert.True(t, strings.HasPrefix(l, "Q1 Subdivision "+string(rune('1'+i))+": "), l)
		}
	})
}
