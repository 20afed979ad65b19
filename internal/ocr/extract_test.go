package ocr

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/region"
	"github.com/MeKo-Tech/gabarito/internal/testutil"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

type fakeEngine struct {
	text   string
	sizes  *[]image.Point
	closed *int
}

func (f fakeEngine) Text(_ context.Context, img image.Image) (string, error) {
	*f.sizes = append(*f.sizes, img.Bounds().Size())
	return f.text, nil
}

func (f fakeEngine) Close() error {
	*f.closed++
	return nil
}

type fakeFactory struct {
	text      string
	languages []string
	sizes     []image.Point
	closed    int
	err       error
}

func (f *fakeFactory) New(language string) (Engine, error) {
	f.languages = append(f.languages, language)
	if f.err != nil {
		return nil, f.err
	}
	return fakeEngine{text: f.text, sizes: &f.sizes, closed: &f.closed}, nil
}

func writeFixtures(t *testing.T, regions ...region.Region) (in, out, regionsFile string) {
	t.Helper()
	root := t.TempDir()
	in = filepath.Join(root, "threshold")
	out = filepath.Join(root, "words")
	regionsFile = filepath.Join(root, "regions.txt")
	testutil.SaveImage(t, utils.BlankNRGBA(200, 100, image.White), filepath.Join(in, "page_1.png"))
	require.NoError(t, region.Save(regionsFile, regions))
	return in, out, regionsFile
}

func TestWordsFileName(t *testing.T) {
	assert.Equal(t, "page_3_region_Nome_words.txt", WordsFileName("/x/page_3.png", "Nome"))
	assert.Equal(t, "page_3_region_a_b_words.txt", WordsFileName("page_3.png", "a/b"))
}

func TestRunWritesNormalizedText(t *testing.T) {
	name := region.Region{Name: "Nome", X1: 0.125, Y1: 0.25, X2: 0.625, Y2: 0.75, Rows: 1, Columns: 1, IsWord: true}
	mark := region.Region{Name: "Q1", X1: 0, Y1: 0, X2: 1, Y2: 1, Rows: 1, Columns: 4}
	in, out, regionsFile := writeFixtures(t, name, mark)

	f := &fakeFactory{text: "Jose\u0301 Silva\n"}
	res := Run(context.Background(), Options{InDir: in, OutDir: out, RegionsFile: regionsFile, NewEngine: f.New}, logsink.Discard)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Processed)

	assert.Equal(t, []string{DefaultLanguage}, f.languages)
	assert.Equal(t, []image.Point{{100, 50}}, f.sizes)
	assert.Equal(t, 1, f.closed)

	data, err := os.ReadFile(filepath.Join(out, "page_1_region_Nome_words.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Extracted Words for Nome:\nJos\u00e9 Silva\n", string(data))
}

func TestRunEngineFailureIsLogged(t *testing.T) {
	word := region.Region{Name: "Nome", X1: 0.125, Y1: 0.25, X2: 0.625, Y2: 0.75, Rows: 1, Columns: 1, IsWord: true}
	in, out, regionsFile := writeFixtures(t, word)

	console := logsink.NewConsole()
	f := &fakeFactory{err: errors.New("tessdata missing")}
	res := Run(context.Background(), Options{InDir: in, OutDir: out, RegionsFile: regionsFile, Language: "por", NewEngine: f.New}, console)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"por"}, f.languages)

	console.Drain()
	require.Len(t, console.Entries(), 1)
	assert.Equal(t, logsink.Error, console.Entries()[0].Level)
	assert.Contains(t, console.Entries()[0].Message, "could not initialize OCR engine")
	assert.False(t, testutil.FileExists(filepath.Join(out, "page_1_region_Nome_words.txt")))
}

func TestRunEmptyCropSkipsRegion(t *testing.T) {
	outside := region.Region{Name: "Fora", X1: 1.2, Y1: 1.2, X2: 1.5, Y2: 1.5, Rows: 1, Columns: 1, IsWord: true}
	in, out, regionsFile := writeFixtures(t, outside)

	counter := logsink.NewCounter(logsink.Discard)
	f := &fakeFactory{text: "x"}
	res := Run(context.Background(), Options{InDir: in, OutDir: out, RegionsFile: regionsFile, NewEngine: f.New}, counter)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, counter.Count(logsink.Error))
	assert.Empty(t, f.languages)
}

func TestRunFatalWithoutRegions(t *testing.T) {
	root := t.TempDir()
	res := Run(context.Background(), Options{InDir: root, OutDir: filepath.Join(root, "out"), RegionsFile: filepath.Join(root, "none.txt")}, logsink.Discard)
	require.Error(t, res.Err)
}
