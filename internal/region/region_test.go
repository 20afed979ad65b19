package region

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

func TestParseRecord(t *testing.T) {
	input := "Q1| 0.1 0.2 0.9 0.4 1 4 0 0 0\n\nNome| 0.05 0.5 0.6 0.55 1 1 0 1 0\r\n"
	regions, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, Region{Name: "Q1", X1: 0.1, Y1: 0.2, X2: 0.9, Y2: 0.4, Rows: 1, Columns: 4}, regions[0])
	assert.Equal(t, "Nome", regions[1].Name)
	assert.True(t, regions[1].IsWord)
	assert.False(t, regions[1].IsNumber)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing separator": "Q1 0.1 0.2 0.9 0.4 1 4 0 0 0",
		"too few fields":    "Q1| 0.1 0.2 0.9",
		"bad float":         "Q1| x 0.2 0.9 0.4 1 4 0 0 0",
		"bad rows":          "Q1| 0.1 0.2 0.9 0.4 r 4 0 0 0",
		"bad flag":          "Q1| 0.1 0.2 0.9 0.4 1 4 2 0 0",
		"zero columns":      "Q1| 0.1 0.2 0.9 0.4 1 0 0 0 0",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestParseKeepsRecordsBeforeMalformedLine(t *testing.T) {
	input := "Q1| 0.1 0.2 0.9 0.4 1 4 0 0 0\n\nQ2| 0.1 0.5 0.9 oops 1 4 0 0 0\nQ3| 0.1 0.6 0.9 0.8 1 4 0 0 0\n"
	regions, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Q1", regions[0].Name)

	var syntax *SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, 3, syntax.Line)
	assert.True(t, Usable(regions, err))

	assert.False(t, Usable(nil, err), "nothing before the bad line")
	assert.False(t, Usable(regions, errors.New("read regions: disk gone")))
	assert.True(t, Usable(regions, nil))
}

func TestLoadReturnsPartialRegions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.txt")
	require.NoError(t, os.WriteFile(path, []byte("Q1| 0 0 1 1 1 4 1 0 0\nbroken\n"), 0o600))

	regions, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Len(t, regions, 1)
	assert.True(t, Usable(regions, err))
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []Region{{Name: "ID", X1: 0.25, Y1: 1.5, X2: 0.75, Y2: 1.75, Rows: 10, Columns: 5, AnalyzeVertical: true, IsNumber: true}})
	require.NoError(t, err)
	assert.Equal(t, "ID| 0.25 1.5 0.75 1.75 10 5 1 0 1\n", buf.String())

	require.Error(t, Write(&buf, []Region{{Name: "a|b", Rows: 1, Columns: 1}}))
}

func genRegion() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.Float64Range(-2, 2),
		gen.Float64Range(-2, 2),
		gen.Float64Range(-2, 2),
		gen.Float64Range(-2, 2),
		gen.IntRange(1, 30),
		gen.IntRange(1, 30),
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	).Map(func(v []any) Region {
		return Region{
			Name: v[0].(string),
			X1:   v[1].(float64), Y1: v[2].(float64), X2: v[3].(float64), Y2: v[4].(float64),
			Rows: v[5].(int), Columns: v[6].(int),
			AnalyzeVertical: v[7].(bool), IsWord: v[8].(bool), IsNumber: v[9].(bool),
		}
	})
}

func TestRegionFileRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("write then parse yields identical regions", prop.ForAll(
		func(regions []Region) bool {
			var buf bytes.Buffer
			if err := Write(&buf, regions); err != nil {
				return false
			}
			back, err := Parse(&buf)
			if err != nil || len(back) != len(regions) {
				return false
			}
			for i := range regions {
				if back[i] != regions[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRegion()),
	))

	properties.TestingRun(t)
}

func TestYAMLRoundTrip(t *testing.T) {
	regions := []Region{
		{Name: "Matricula", X1: 0.1, Y1: 0.1, X2: 0.5, Y2: 0.3, Rows: 10, Columns: 5, AnalyzeVertical: false, IsNumber: true},
		{Name: "Nome", X1: 0.1, Y1: 0.35, X2: 0.9, Y2: 0.4, Rows: 1, Columns: 1, IsWord: true},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeYAML(&buf, regions))
	assert.Contains(t, buf.String(), "regions:")

	back, err := DecodeYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, regions, back)

	_, err = DecodeYAML(strings.NewReader("regions:\n  - name: bad\n    coordinates: [0, 0, 1]\n    subdivisions: {rows: 1, columns: 1}\n"))
	require.Error(t, err)

	empty, err := DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPixelBounds(t *testing.T) {
	r := Region{X1: 0.1, Y1: 0.2, X2: 0.6, Y2: 0.7, Rows: 1, Columns: 1}
	b := r.PixelBounds(1000, 500)
	assert.Equal(t, Bounds{X: 100, Y: 100, Width: 500, Height: 250}, b)
	assert.Equal(t, image.Rect(100, 100, 600, 350), b.Rect())
	assert.True(t, b.Inside(1000, 500))
	assert.False(t, b.Inside(599, 500))

	inverted := Region{X1: 0.6, Y1: 0.2, X2: 0.1, Y2: 0.7}.PixelBounds(1000, 500)
	assert.True(t, inverted.Width < 0)
	assert.True(t, inverted.Rect().Empty())
	assert.False(t, inverted.Inside(1000, 500))
}

func TestPixelBoundsSinglePrecision(t *testing.T) {
	cases := []struct {
		r    Region
		cols int
		rows int
		want Bounds
	}{
		{Region{X1: 0.2, Y1: 0.2, X2: 0.7, Y2: 0.7}, 500, 500, Bounds{X: 100, Y: 100, Width: 250, Height: 250}},
		{Region{X1: 0.1, Y1: 0.3, X2: 0.6, Y2: 0.8}, 1000, 1000, Bounds{X: 100, Y: 300, Width: 500, Height: 500}},
		{Region{X1: 0, Y1: 0, X2: 1, Y2: 1}, 613, 797, Bounds{X: 0, Y: 0, Width: 613, Height: 797}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.r.PixelBounds(c.cols, c.rows), "%+v", c.r)
	}
}

func TestAlternativesAndChoices(t *testing.T) {
	h := Region{Rows: 5, Columns: 3}
	assert.Equal(t, 3, h.Alternatives())
	assert.Equal(t, 5, h.Choices())

	v := Region{Rows: 5, Columns: 3, AnalyzeVertical: true}
	assert.Equal(t, 5, v.Alternatives())
	assert.Equal(t, 3, v.Choices())
}

func TestOverlayAndDragInverse(t *testing.T) {
	vp := Viewport{Left: 10, Top: 20, Width: 400, Height: 600}
	r := FromDrag(utils.Point{X: 50, Y: 80}, utils.Point{X: 250, Y: 380}, vp, 3)

	assert.Equal(t, "Rectangle 3", r.Name)
	assert.Equal(t, 1, r.Rows)
	assert.InDelta(t, 1.1, r.Y1, 1e-9)

	r.Rows, r.Columns = 2, 4
	s := Overlay(r, vp)
	assert.InDelta(t, 50, s.Min.X, 1e-9)
	assert.InDelta(t, 80, s.Min.Y, 1e-9)
	assert.InDelta(t, 250, s.Max.X, 1e-9)
	assert.InDelta(t, 380, s.Max.Y, 1e-9)
	require.Len(t, s.Grid, 1+3)
	assert.InDelta(t, 230, s.Grid[0].From.Y, 1e-9)
	assert.InDelta(t, 100, s.Grid[1].From.X, 1e-9)
}

func TestWords(t *testing.T) {
	regions := []Region{{Name: "a"}, {Name: "b", IsWord: true}}
	assert.Equal(t, []Region{{Name: "b", IsWord: true}}, Words(regions))
}
