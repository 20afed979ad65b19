package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/gabarito/internal/ocr"
	"github.com/MeKo-Tech/gabarito/internal/pdf"
	"github.com/MeKo-Tech/gabarito/internal/pipeline"
	"github.com/MeKo-Tech/gabarito/internal/server"
)

// Config represents the complete configuration of the grading tool. It is
// loaded from configuration files, GABARITO_* environment variables and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Input     InputConfig     `mapstructure:"input" yaml:"input" json:"input"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace" json:"workspace"`
	Skip      SkipConfig      `mapstructure:"skip" yaml:"skip" json:"skip"`
	OCR       OCRConfig       `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// InputConfig names the files a run consumes.
type InputConfig struct {
	PDF       string  `mapstructure:"pdf" yaml:"pdf" json:"pdf"`
	Reference string  `mapstructure:"reference" yaml:"reference" json:"reference"`
	Regions   string  `mapstructure:"regions" yaml:"regions" json:"regions"`
	DPI       float64 `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	Pages     string  `mapstructure:"pages" yaml:"pages" json:"pages"`
	// Raster is auto, render or extract.
	Raster    string  `mapstructure:"raster" yaml:"raster" json:"raster"`
}

// WorkspaceConfig locates the working directories.
type WorkspaceConfig struct {
	Root string `mapstructure:"root" yaml:"root" json:"root"`
}

// SkipConfig disables individual stages.
type SkipConfig struct {
	Rasterize bool `mapstructure:"rasterize" yaml:"rasterize" json:"rasterize"`
	Align     bool `mapstructure:"align" yaml:"align" json:"align"`
	Denoise   bool `mapstructure:"denoise" yaml:"denoise" json:"denoise"`
	Contours  bool `mapstructure:"contours" yaml:"contours" json:"contours"`
	Binarize  bool `mapstructure:"binarize" yaml:"binarize" json:"binarize"`
	Answers   bool `mapstructure:"answers" yaml:"answers" json:"answers"`
	Words     bool `mapstructure:"words" yaml:"words" json:"words"`
	Aggregate bool `mapstructure:"aggregate" yaml:"aggregate" json:"aggregate"`
}

// OCRConfig contains word extraction settings.
type OCRConfig struct {
	Language string `mapstructure:"language" yaml:"language" json:"language"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		Input:     InputConfig{DPI: pdf.DefaultDPI, Raster: pdf.ModeAuto.String()},
		Workspace: WorkspaceConfig{Root: "."},
		OCR:       OCRConfig{Language: ocr.DefaultLanguage},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			ShutdownTimeout: 10,
		},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Input.DPI <= 0 {
		return fmt.Errorf("invalid dpi: %g (must be positive)", c.Input.DPI)
	}
	if _, err := pdf.ParseMode(c.Input.Raster); err != nil {
		return err
	}
	if c.Workspace.Root == "" {
		return fmt.Errorf("workspace root must not be empty")
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("ocr language must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", c.Server.ShutdownTimeout)
	}
	return nil
}

// Names maps stage names to their skip flag.
func (s SkipConfig) Names() map[string]bool {
	return map[string]bool{
		pipeline.StageRasterize: s.Rasterize,
		pipeline.StageAlign:     s.Align,
		pipeline.StageDenoise:   s.Denoise,
		pipeline.StageContours:  s.Contours,
		pipeline.StageBinarize:  s.Binarize,
		pipeline.StageAnswers:   s.Answers,
		pipeline.StageWords:     s.Words,
		pipeline.StageAggregate: s.Aggregate,
	}
}

// ToPipelineConfig converts the configuration to a run configuration.
// An unknown raster mode falls back to auto; Validate reports it.
func (c *Config) ToPipelineConfig() pipeline.Config {
	raster, _ := pdf.ParseMode(c.Input.Raster)
	return pipeline.Config{
		PDF:       c.Input.PDF,
		Reference: c.Input.Reference,
		Regions:   c.Input.Regions,
		DPI:       c.Input.DPI,
		Pages:     c.Input.Pages,
		Raster:    raster,
		Workspace: c.Workspace.Root,
		Language:  c.OCR.Language,
		Skip:      c.Skip.Names(),
	}
}

// ToServerConfig converts the server section.
func (c *Config) ToServerConfig() server.Config {
	return server.Config{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		CORSOrigin:      c.Server.CORSOrigin,
		ShutdownTimeout: time.Duration(c.Server.ShutdownTimeout) * time.Second,
	}
}
