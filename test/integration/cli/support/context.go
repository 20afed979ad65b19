package support

import (
	"fmt"
	"os"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Workspace is the scratch directory commands run in.
	Workspace string
	EnvVars   []string

	// Server management
	HTTPTestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a new test context with a fresh workspace.
func NewTestContext() (*TestContext, error) {
	workspace, err := os.MkdirTemp("", "gabarito-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		Workspace:       workspace,
		EnvVars:         []string{},
		LastHTTPHeaders: map[string]string{},
	}, nil
}

// Cleanup stops the test server and removes the workspace.
func (testCtx *TestContext) Cleanup() error {
	testCtx.StopServer()
	if err := os.RemoveAll(testCtx.Workspace); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove workspace %s: %w", testCtx.Workspace, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}
