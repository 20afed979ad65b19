package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/gabarito/internal/pipeline"
)

// theGradingServerIsRunning starts the control API with only the aggregate
// stage enabled.
func (testCtx *TestContext) theGradingServerIsRunning() error {
	cfg := pipeline.DefaultConfig()
	cfg.Workspace = testCtx.Workspace
	for _, name := range pipeline.StageNames {
		cfg.Skip[name] = name != pipeline.StageAggregate
	}
	testCtx.startTestHTTPServer(cfg)
	return nil
}

func (testCtx *TestContext) request(method, path string) error {
	if testCtx.HTTPTestServer == nil {
		return errors.New("server is not running")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, testCtx.HTTPTestServer.Server.URL+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) iPOST(path string) error { return testCtx.request(http.MethodPost, path) }

func (testCtx *TestContext) iGET(path string) error { return testCtx.request(http.MethodGet, path) }

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBeSet(name string) error {
	if testCtx.LastHTTPHeaders[name] == "" {
		return fmt.Errorf("response header %s is not set", name)
	}
	return nil
}

// theRunShouldCompleteWithin polls /status until the runner reports a
// completed run.
func (testCtx *TestContext) theRunShouldCompleteWithin(seconds int) error {
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
		if err := testCtx.iGET("/status"); err != nil {
			return err
		}
		var snap struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &snap); err != nil {
			return fmt.Errorf("invalid status response: %w", err)
		}
		if snap.State == "completed" {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("run did not complete within %ds: %s", seconds, testCtx.LastHTTPResponse)
}

// RegisterServerSteps registers the control API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the grading server is running for the workspace$`, testCtx.theGradingServerIsRunning)
	sc.Step(`^I POST to "([^"]*)"$`, testCtx.iPOST)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should be set$`, testCtx.theResponseHeaderShouldBeSet)
	sc.Step(`^the run should complete within (\d+) seconds$`, testCtx.theRunShouldCompleteWithin)
}
