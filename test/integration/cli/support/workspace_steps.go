package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/gabarito/internal/region"
	"github.com/MeKo-Tech/gabarito/internal/testutil"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// aBlankTemplate writes the unmarked answer sheet used as alignment reference.
func (testCtx *TestContext) aBlankTemplate(name string) error {
	return utils.SavePNG(testCtx.path(name), testutil.DefaultSheet().Template())
}

// aScannedExam builds a PDF with one page per marked choice. choices is a
// comma-separated list of 0-based alternatives.
func (testCtx *TestContext) aScannedExam(name, choices string) error {
	sheet := testutil.DefaultSheet()
	scans := filepath.Join(testCtx.Workspace, "scans")
	if err := os.MkdirAll(scans, 0o750); err != nil {
		return err
	}

	var files []string
	for i, c := range strings.Split(choices, ",") {
		choice, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return fmt.Errorf("invalid choice %q: %w", c, err)
		}
		file := filepath.Join(scans, fmt.Sprintf("scan_%03d.png", i+1))
		if err := utils.SavePNG(file, sheet.Marked(choice)); err != nil {
			return err
		}
		files = append(files, file)
	}
	if err := api.ImportImagesFile(files, testCtx.path(name), nil, nil); err != nil {
		return fmt.Errorf("failed to build PDF %s: %w", name, err)
	}
	return nil
}

// aRegionFileForQuestion writes the answer sheet region of question q.
func (testCtx *TestContext) aRegionFileForQuestion(name, q string) error {
	return region.Save(testCtx.path(name), []region.Region{testutil.DefaultSheet().Region(q)})
}

// aFileWith writes a file with the given content plus a trailing newline.
func (testCtx *TestContext) aFileWith(name string, content *godog.DocString) error {
	p := testCtx.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(content.Content+"\n"), 0o600)
}

// RegisterWorkspaceSteps registers the fixture steps.
func (testCtx *TestContext) RegisterWorkspaceSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a blank answer sheet "([^"]*)"$`, testCtx.aBlankTemplate)
	sc.Step(`^a scanned exam "([^"]*)" with marked choices "([^"]*)"$`, testCtx.aScannedExam)
	sc.Step(`^a region file "([^"]*)" for question "([^"]*)"$`, testCtx.aRegionFileForQuestion)
	sc.Step(`^a file "([^"]*)" with:$`, testCtx.aFileWith)
}
