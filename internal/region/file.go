package region

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const fieldCount = 9

// SyntaxError reports a malformed record.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse reads region records of the form
//
//	<name>| <x1> <y1> <x2> <y2> <rows> <columns> <vertical> <word> <number>
//
// one per line. Blank lines are ignored. Reading stops at the first
// malformed record with a *SyntaxError; the records before it are returned
// along with the error.
func Parse(r io.Reader) ([]Region, error) {
	var regions []Region
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		reg, err := parseRecord(text)
		if err != nil {
			return regions, &SyntaxError{Line: line, Err: err}
		}
		regions = append(regions, reg)
	}
	if err := sc.Err(); err != nil {
		return regions, fmt.Errorf("read regions: %w", err)
	}
	return regions, nil
}

func parseRecord(text string) (Region, error) {
	name, rest, ok := strings.Cut(text, "|")
	if !ok {
		return Region{}, errors.New("missing '|' after region name")
	}
	fields := strings.Fields(rest)
	if len(fields) < fieldCount {
		return Region{}, fmt.Errorf("region %q: expected %d fields, got %d", name, fieldCount, len(fields))
	}

	reg := Region{Name: name}
	coords := []*float64{&reg.X1, &reg.Y1, &reg.X2, &reg.Y2}
	for i, dst := range coords {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return Region{}, fmt.Errorf("region %q: coordinate %d: %w", name, i+1, err)
		}
		*dst = v
	}

	var err error
	if reg.Rows, err = strconv.Atoi(fields[4]); err != nil {
		return Region{}, fmt.Errorf("region %q: rows: %w", name, err)
	}
	if reg.Columns, err = strconv.Atoi(fields[5]); err != nil {
		return Region{}, fmt.Errorf("region %q: columns: %w", name, err)
	}

	flags := []*bool{&reg.AnalyzeVertical, &reg.IsWord, &reg.IsNumber}
	for i, dst := range flags {
		switch fields[6+i] {
		case "0":
			*dst = false
		case "1":
			*dst = true
		default:
			return Region{}, fmt.Errorf("region %q: flag %d must be 0 or 1, got %q", name, i+1, fields[6+i])
		}
	}

	if err := reg.Validate(); err != nil {
		return Region{}, err
	}
	return reg, nil
}

// Write serializes regions in the format accepted by Parse.
func Write(w io.Writer, regions []Region) error {
	bw := bufio.NewWriter(w)
	for _, r := range regions {
		if strings.ContainsAny(r.Name, "|\r\n") {
			return fmt.Errorf("region %q: name must not contain '|' or line breaks", r.Name)
		}
		_, err := fmt.Fprintf(bw, "%s| %s %s %s %s %d %d %s %s %s\n",
			r.Name,
			formatFloat(r.X1), formatFloat(r.Y1), formatFloat(r.X2), formatFloat(r.Y2),
			r.Rows, r.Columns,
			formatBool(r.AnalyzeVertical), formatBool(r.IsWord), formatBool(r.IsNumber))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads a region file from disk. On a parse error the records read
// before it are returned with the error.
func Load(path string) ([]Region, error) {
	f, err := os.Open(path) //nolint:gosec // G304: region file path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer func() { _ = f.Close() }()
	regions, err := Parse(f)
	if err != nil {
		return regions, fmt.Errorf("parse %s: %w", path, err)
	}
	return regions, nil
}

// Save writes a region file to disk, replacing any existing content.
func Save(path string, regions []Region) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: region file path is operator supplied
	if err != nil {
		return fmt.Errorf("create region file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, regions)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
