package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brykly/blogflow/pkg/config"
	"github.com/brykly/blogflow/pkg/log"
	"github.com/brykly/blogflow/pkg/persistence/file"
	"github.com/brykly/blogflow/pkg/pipeline"
	"github.com/brykly/blogflow/pkg/services"
	"github.com/brykly/blogflow/pkg/testutil"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	runs := services.NewRuns(log.Discard(), nil, nil, store, nil)

	return NewAPI(log.Discard(), runs).App(), store
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return body
}

func TestAPI_RootEndpoint(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "blogflow API", string(readBody(t, resp)))
}

func TestAPI_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	for _, path := range []string{"/livez", "/readyz", "/health"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		readBody(t, resp)
	}
}

func TestAPI_RunsRoutesAreMounted(t *testing.T) {
	t.Parallel()

	app, store := setupTestApp(t)

	run := testutil.CreateTestRun()
	require.NoError(t, store.SaveRun(t.Context(), run))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(readBody(t, resp), &decoded))
	assert.Equal(t, run.ID, decoded["id"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	readBody(t, resp)
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	report := &workflow.StatusReport{Workflow: "video_processing", Status: workflow.StatusFailed}

	var buf bytes.Buffer

	err := printResult(&buf, report, errors.New("download failed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download failed")
	assert.Contains(t, buf.String(), `"status": "failed"`)

	stepErr := &pipeline.StepError{Workflow: "video_processing", Step: pipeline.StepDownloadVideo, Err: errors.New("connection reset")}
	err = printResult(&buf, report, stepErr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run failed at step download_video")
	assert.ErrorIs(t, err, stepErr)

	buf.Reset()
	require.NoError(t, printResult(&buf, report, nil))
	assert.Contains(t, buf.String(), `"workflow": "video_processing"`)
}

func TestPrintConfig_MasksAPIKeys(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.OpenAI.APIKey = "sk-secret"

	var buf bytes.Buffer
	require.NoError(t, printConfig(&buf, cfg))

	assert.NotContains(t, buf.String(), "sk-secret")
	assert.Equal(t, "sk-secret", cfg.OpenAI.APIKey)

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, redacted, decoded.OpenAI.APIKey)
	assert.Empty(t, decoded.OpenRouter.APIKey)
	assert.Equal(t, cfg.Blog.Providers, decoded.Blog.Providers)
}

func TestNewCommand_Subcommands(t *testing.T) {
	t.Parallel()

	names := make([]string, 0)
	for _, sub := range newCommand().Commands {
		names = append(names, sub.Name)
	}

	assert.Equal(t, []string{"video", "blog", "process", "serve", "schedule", "validate", "runs", "events"}, names)
}
