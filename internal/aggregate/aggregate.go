// Package aggregate merges the per-page answer files into one result file.
package aggregate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/stage"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

const (
	// FileName is the aggregate file created in the destination directory.
	FileName = "respostas.txt"
	// JoinedPrefix answers are concatenated without a separator; the rest
	// are comma-prefixed.
	JoinedPrefix = 5
)

// Options configures Run.
type Options struct {
	InDir   string
	DestDir string
}

// ReadAnswers returns the answer token of every line of r that contains a
// colon: the text after the first colon with leading blanks removed.
func ReadAnswers(r io.Reader) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		_, after, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		tokens = append(tokens, strings.TrimLeft(after, " \t"))
	}
	return tokens, sc.Err()
}

// Line formats one page: the first JoinedPrefix tokens joined, every further
// token preceded by a comma, terminated by ",\n".
func Line(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i >= JoinedPrefix {
			b.WriteByte(',')
		}
		b.WriteString(tok)
	}
	b.WriteString(",\n")
	return b.String()
}

// Run writes one line per answer file of InDir, in page order, to
// DestDir/respostas.txt. Files without a page number are skipped.
func Run(ctx context.Context, opts Options, sink logsink.Sink) stage.Result {
	if err := utils.EnsureDir(opts.DestDir); err != nil {
		return stage.Fatalf(sink, "failed to create destination directory: %v", err)
	}
	paths, err := utils.ListExt(opts.InDir, ".txt")
	if err != nil {
		return stage.Fatalf(sink, "cannot read answers directory: %v", err)
	}

	dest := filepath.Join(opts.DestDir, FileName)
	f, err := os.Create(dest) //nolint:gosec // G304: fixed file name under the destination directory
	if err != nil {
		return stage.Fatalf(sink, "cannot open %s for writing: %v", dest, err)
	}
	w := bufio.NewWriter(f)

	var numbered []string
	for _, p := range paths {
		if _, ok := utils.PageNumber(filepath.Base(p)); !ok {
			logsink.Warnf(sink, "skipping %s: no page number in file name", filepath.Base(p))
			continue
		}
		numbered = append(numbered, p)
	}

	res := stage.Each(ctx, numbered, sink, func(path string) error {
		tokens, err := readFile(path)
		if err != nil {
			return err
		}
		_, err = w.WriteString(Line(tokens))
		return err
	})

	if err := w.Flush(); err != nil && res.Err == nil {
		res.Err = fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil && res.Err == nil {
		res.Err = fmt.Errorf("close %s: %w", dest, err)
	}
	if res.Err != nil {
		sink.Emit(logsink.Error, res.Err.Error())
		return res
	}
	logsink.Infof(sink, "answers of %d pages written to %s", res.Processed, dest)
	return res
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the answers directory listing
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadAnswers(f)
}
