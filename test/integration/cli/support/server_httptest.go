package support

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/pipeline"
	"github.com/MeKo-Tech/gabarito/internal/runner"
	"github.com/MeKo-Tech/gabarito/internal/server"
)

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server  *httptest.Server
	Runner  *runner.Runner
	Console *logsink.Console
}

// startTestHTTPServer serves the control API over a runner executing the
// given stages of the standard pipeline on the workspace.
func (testCtx *TestContext) startTestHTTPServer(cfg pipeline.Config) {
	console := logsink.NewConsole()
	r := runner.New(func(ctx context.Context) pipeline.RunResult {
		return pipeline.Run(ctx, pipeline.Standard(cfg), console)
	})

	mux := http.NewServeMux()
	server.NewServer(server.Config{}, r, console).SetupRoutes(mux)

	testCtx.HTTPTestServer = &HTTPTestServerWrapper{
		Server:  httptest.NewServer(mux),
		Runner:  r,
		Console: console,
	}
}

// StopServer shuts the test server down if one is running.
func (testCtx *TestContext) StopServer() {
	if testCtx.HTTPTestServer == nil {
		return
	}
	testCtx.HTTPTestServer.Server.Close()
	testCtx.HTTPTestServer.Runner.Close()
	testCtx.HTTPTestServer = nil
}
