// Package web provides HTTP handlers for starting and inspecting workflow runs.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brykly/blogflow/pkg/pipeline"
	"github.com/brykly/blogflow/pkg/services"
	"github.com/brykly/blogflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	runService *services.Runs
	validator  *validator.Validate
}

func NewAPIHandlers(runService *services.Runs, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		runService: runService,
		validator:  validator,
	}
}

// Register mounts the run endpoints and the health check on router.
func (h *APIHandlers) Register(router fiber.Router) {
	r := router.Group("/runs")
	r.Get("/", h.GetRuns)
	r.Get("/:id", h.GetRun)
	r.Post("/video", h.CreateVideoRun)
	r.Post("/blog", h.CreateBlogRun)
	r.Post("/process", h.CreateProcessRun)

	router.Get("/health", h.HealthCheck)
}

// runResponse answers a started run. A run that executed is a created
// resource whether it completed or failed; rejected input is a 400.
func runResponse(c fiber.Ctx, report *workflow.StatusReport, err error) error {
	if err != nil && (report == nil || services.IsValidationError(err)) {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *APIHandlers) CreateVideoRun(c fiber.Ctx) error {
	var req VideoRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	report, err := h.runService.ProcessVideo(c.Context(), req.URL)

	return runResponse(c, report, err)
}

func (h *APIHandlers) CreateBlogRun(c fiber.Ctx) error {
	var req BlogRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	report, err := h.runService.GenerateBlog(c.Context(), req.TranscriptPath, req.Tone, req.Style)

	return runResponse(c, report, err)
}

func (h *APIHandlers) CreateProcessRun(c fiber.Ctx) error {
	var req ProcessRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.runService.Process(c.Context(), req.URL, req.Tone, req.Style)
	if err != nil && (result.Video == nil || services.IsValidationError(err)) {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	req := services.ListRunsRequest{
		Workflow: c.Query("workflow"),
		Status:   c.Query("status"),
		Input:    c.Query("input"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid query parameters: "+err.Error())
		}

		req.Limit = limit
	}

	runs, err := h.runService.ListRuns(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, TransformRunSummary(run))
	}

	return c.JSON(fiber.Map{
		"runs":        summaries,
		"total_count": len(summaries),
	})
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.runService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck, storeOk := h.runService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "blogflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if storeOk {
		status = "healthy"
		message = "blogflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"run_store": storeCheck,
		},
		"workflows": []string{pipeline.VideoProcessingName, pipeline.BlogGenerationName},
		"timestamp": time.Now().UTC(),
	})
}
