package region

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlSubdivisions struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
}

type yamlRegion struct {
	Name            string           `yaml:"name"`
	Coordinates     []float64        `yaml:"coordinates,flow"`
	Subdivisions    yamlSubdivisions `yaml:"subdivisions"`
	AnalyzeVertical bool             `yaml:"analyze_vertical,omitempty"`
	IsWord          bool             `yaml:"is_word,omitempty"`
	IsNumber        bool             `yaml:"is_number,omitempty"`
}

type yamlDocument struct {
	Regions []yamlRegion `yaml:"regions"`
}

// EncodeYAML writes regions as a YAML document with a top-level "regions" list.
func EncodeYAML(w io.Writer, regions []Region) error {
	doc := yamlDocument{Regions: make([]yamlRegion, len(regions))}
	for i, r := range regions {
		doc.Regions[i] = yamlRegion{
			Name:            r.Name,
			Coordinates:     []float64{r.X1, r.Y1, r.X2, r.Y2},
			Subdivisions:    yamlSubdivisions{Rows: r.Rows, Columns: r.Columns},
			AnalyzeVertical: r.AnalyzeVertical,
			IsWord:          r.IsWord,
			IsNumber:        r.IsNumber,
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode regions: %w", err)
	}
	return enc.Close()
}

// DecodeYAML reads a document produced by EncodeYAML.
func DecodeYAML(r io.Reader) ([]Region, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	out := make([]Region, len(doc.Regions))
	for i, y := range doc.Regions {
		if len(y.Coordinates) != 4 {
			return nil, fmt.Errorf("region %q: expected 4 coordinates, got %d", y.Name, len(y.Coordinates))
		}
		out[i] = Region{
			Name:            y.Name,
			X1:              y.Coordinates[0],
			Y1:              y.Coordinates[1],
			X2:              y.Coordinates[2],
			Y2:              y.Coordinates[3],
			Rows:            y.Subdivisions.Rows,
			Columns:         y.Subdivisions.Columns,
			AnalyzeVertical: y.AnalyzeVertical,
			IsWord:          y.IsWord,
			IsNumber:        y.IsNumber,
		}
		if err := out[i].Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
