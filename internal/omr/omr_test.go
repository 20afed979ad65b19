package omr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/region"
	"github.com/MeKo-Tech/gabarito/internal/testutil"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

func TestThreshold(t *testing.T) {
	assert.Equal(t, 0, Threshold(nil))
	assert.Equal(t, 28, Threshold([]int{10, 20, 30}))
	assert.Equal(t, 83, Threshold([]int{100, 100, 0, 0}))
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name     string
		counts   []int
		isNumber bool
		want     byte
	}{
		{"single mark", []int{0, 0, 1800, 310}, false, 'C'},
		{"first choice", []int{100, 0, 0, 0}, false, 'A'},
		{"blank", []int{0, 0, 0, 0}, false, Blank},
		{"uniform", []int{40, 40, 40}, false, Blank},
		{"two marks", []int{100, 100, 0, 0}, false, Ambiguous},
		{"numeric", []int{0, 50, 0}, true, '1'},
		{"numeric zero", []int{900, 5, 5, 5, 5, 5, 5, 5, 5, 5}, true, '0'},
		{"faint mark", []int{10, 0, 0}, false, 'A'},
		{"faint mark on dark paper", []int{110, 100, 100}, false, Blank},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, string(tc.want), string(Decide(tc.counts, tc.isNumber)))
		})
	}
}

func TestDecidePermutationInvariance(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("selection follows the permuted index", prop.ForAll(
		func(counts []int, seed uint64) bool {
			perm := rand.New(rand.NewPCG(seed, 17)).Perm(len(counts))
			permuted := make([]int, len(counts))
			for i, p := range perm {
				permuted[p] = counts[i]
			}
			orig := Selected(counts)
			moved := Selected(permuted)
			if len(orig) != len(moved) {
				return false
			}
			got := Decide(permuted, false)
			switch len(orig) {
			case 0:
				return got == Blank
			case 1:
				return got == Symbol(perm[orig[0]], false)
			default:
				return got == Ambiguous
			}
		},
		gen.SliceOfN(6, gen.IntRange(0, 5000)),
		gen.UInt64(),
	))
	properties.TestingRun(t)
}

// The cutoff grows faster than the marked count when every cell gains the
// same background, so a uniform offset is not neutral: it can turn a single
// mark into a blank answer.
func TestDecideUniformOffset(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a large uniform offset blanks a single mark", prop.ForAll(
		func(n, idx, mark int) bool {
			idx %= n
			counts := make([]int, n)
			counts[idx] = mark
			if Decide(counts, false) != Symbol(idx, false) {
				return false
			}
			k := 6*mark + 6
			shifted := make([]int, n)
			for i, c := range counts {
				shifted[i] = c + k
			}
			return Decide(shifted, false) == Blank
		},
		gen.IntRange(2, 6),
		gen.IntRange(0, 5),
		gen.IntRange(1, 5000),
	))
	properties.TestingRun(t)
}

func TestReadAnswersSymbolCount(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 300, 300))
	properties := gopter.NewProperties(nil)

	properties.Property("one symbol per question", prop.ForAll(
		func(rows, cols int, vertical bool) bool {
			r := region.Region{Name: "Q", X1: 0.1, Y1: 0.1, X2: 0.9, Y2: 0.9, Rows: rows, Columns: cols, AnalyzeVertical: vertical}
			answers := ReadAnswers(g, []region.Region{r}, logsink.Discard)
			want := cols
			if vertical {
				want = rows
			}
			if len(answers) != want {
				return false
			}
			for i, a := range answers {
				if a.Subdivision != i+1 || a.Region != "Q" {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(1, 8),
		gen.Bool(),
	))
	properties.TestingRun(t)
}

// markedPage returns a 400x200 binarized page whose top half is one region
// of four horizontal choices, with the given choices filled.
func markedPage(choices ...int) (*image.Gray, region.Region) {
	g := image.NewGray(image.Rect(0, 0, 400, 200))
	for i := range 4 {
		// every cell carries a thin outline like a printed bubble
		testutil.FillRect(g, image.Rect(i*100+20, 40, i*100+80, 42), color.White)
	}
	for _, c := range choices {
		testutil.FillRect(g, image.Rect(c*100+25, 45, c*100+75, 95), color.White)
	}
	return g, region.Region{Name: "Q1", X1: 0, Y1: 0, X2: 1, Y2: 0.5, Rows: 1, Columns: 4, AnalyzeVertical: true}
}

func TestCellBounds(t *testing.T) {
	r := region.Region{Rows: 2, Columns: 4, AnalyzeVertical: true}
	b := region.Bounds{X: 10, Y: 20, Width: 400, Height: 200}
	assert.Equal(t, region.Bounds{X: 225, Y: 150, Width: 70, Height: 80}, CellBounds(r, b, 1, 2))

	r.AnalyzeVertical = false
	assert.Equal(t, region.Bounds{X: 325, Y: 150, Width: 70, Height: 80}, CellBounds(r, b, 3, 1))
}

func TestReadAnswersMarks(t *testing.T) {
	g, r := markedPage(1)
	answers := ReadAnswers(g, []region.Region{r}, logsink.Discard)
	assert.Equal(t, []Answer{{Region: "Q1", Subdivision: 1, Symbol: 'B'}}, answers)

	g, r = markedPage(0, 3)
	assert.Equal(t, Ambiguous, ReadAnswers(g, []region.Region{r}, logsink.Discard)[0].Symbol)

	g, r = markedPage()
	assert.Equal(t, Blank, ReadAnswers(g, []region.Region{r}, logsink.Discard)[0].Symbol)
}

func TestReadAnswersOutOfBoundsCells(t *testing.T) {
	g, _ := markedPage(0)
	tiny := region.Region{Name: "T", X1: 0, Y1: 0, X2: 0.1, Y2: 0.1, Rows: 1, Columns: 2, AnalyzeVertical: true}
	counter := logsink.NewCounter(logsink.Discard)

	answers := ReadAnswers(g, []region.Region{tiny}, counter)
	require.Len(t, answers, 1)
	assert.Equal(t, Blank, answers[0].Symbol)
	assert.Equal(t, 2, counter.Count(logsink.Warning))
}

func TestReadAnswersSkipsWordRegions(t *testing.T) {
	g, r := markedPage(2)
	word := region.Region{Name: "Nome", X1: 0, Y1: 0.5, X2: 1, Y2: 1, Rows: 1, Columns: 1, IsWord: true}
	answers := ReadAnswers(g, []region.Region{word, r}, logsink.Discard)
	assert.Equal(t, []Answer{{Region: "Q1", Subdivision: 1, Symbol: 'C'}}, answers)
}

func TestWriteAnswers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnswers(&buf, []Answer{
		{Region: "Q1", Subdivision: 1, Symbol: 'A'},
		{Region: "Q1", Subdivision: 2, Symbol: Blank},
	}))
	assert.Equal(t, "Q1 Subdivision 1: A\nQ1 Subdivision 2: V\n", buf.String())
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "bin")
	out := filepath.Join(root, "answers")
	regionsFile := filepath.Join(root, "regions.txt")

	g, r := markedPage(3)
	testutil.SaveImage(t, utils.GrayToNRGBA(g), filepath.Join(in, "page_1.png"))
	require.NoError(t, region.Save(regionsFile, []region.Region{r}))

	res := Run(context.Background(), Options{InDir: in, OutDir: out, RegionsFile: regionsFile}, logsink.Discard)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Processed)

	data, err := os.ReadFile(filepath.Join(out, "page_1.png"+FileSuffix))
	require.NoError(t, err)
	assert.Equal(t, "Q1 Subdivision 1: D\n", string(data))
}

func TestRunFatalWithoutRegions(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	for _, file := range []string{empty, filepath.Join(root, "missing.txt")} {
		console := logsink.NewConsole()
		res := Run(context.Background(), Options{InDir: root, OutDir: filepath.Join(root, "out"), RegionsFile: file}, console)
		require.Error(t, res.Err)
		assert.Equal(t, 1, console.Drain())
		assert.False(t, testutil.DirExists(filepath.Join(root, "out")))
	}
}

func TestRunKeepsRegionsBeforeMalformedRecord(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "bin")
	out := filepath.Join(root, "answers")
	regionsFile := filepath.Join(root, "regions.txt")

	g, r := markedPage(1)
	testutil.SaveImage(t, utils.GrayToNRGBA(g), filepath.Join(in, "page_1.png"))
	require.NoError(t, region.Save(regionsFile, []region.Region{r}))
	f, err := os.OpenFile(regionsFile, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("Q2| 0 0.5 1\nQ3| 0 0.5 1 1 1 4 1 0 0\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	counter := logsink.NewCounter(nil)
	res := Run(context.Background(), Options{InDir: in, OutDir: out, RegionsFile: regionsFile}, counter)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, counter.Count(logsink.Warning))

	data, err := os.ReadFile(filepath.Join(out, "page_1.png"+FileSuffix))
	require.NoError(t, err)
	assert.Equal(t, "Q1 Subdivision 1: B\n", string(data))
}

func TestRunFatalWhenFirstRecordIsMalformed(t *testing.T) {
	root := t.TempDir()
	regionsFile := filepath.Join(root, "regions.txt")
	require.NoError(t, os.WriteFile(regionsFile, []byte("Q1 0 0 1 1 1 4 1 0 0\n"), 0o600))

	res := Run(context.Background(), Options{InDir: root, OutDir: filepath.Join(root, "out"), RegionsFile: regionsFile}, logsink.Discard)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "line 1")
}
