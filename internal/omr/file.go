package omr

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// FileSuffix is appended to the page image file name to name its answer file.
const FileSuffix = "_answers.txt"

// WriteAnswers writes one "<region> Subdivision <k>: <symbol>" line per answer.
func WriteAnswers(w io.Writer, answers []Answer) error {
	bw := bufio.NewWriter(w)
	for _, a := range answers {
		if _, err := fmt.Fprintf(bw, "%s Subdivision %d: %c\n", a.Region, a.Subdivision, a.Symbol); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveAnswers writes answers to path, replacing any existing file.
func SaveAnswers(path string, answers []Answer) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path is derived from the answers directory
	if err != nil {
		return fmt.Errorf("create answer file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteAnswers(f, answers)
}
