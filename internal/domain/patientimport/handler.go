package patientimport

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medloop/medloop/internal/platform/auth"
	"github.com/medloop/medloop/internal/quality"
	"github.com/medloop/medloop/pkg/pagination"
)

// maxBatchSize bounds a single upload; larger imports are split by the
// client.
const maxBatchSize = 1000

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "clerk", "practitioner")

	g := api.Group("/imports", role)
	g.POST("/validate", h.ValidateBatch)
	g.GET("", h.ListJobs)
	g.GET("/:id", h.GetJob)
}

type validateRequest struct {
	Records []quality.Record `json:"records"`
}

// ValidateBatch runs the quality pipeline over an uploaded batch and
// returns the merged report. A degraded external service never fails
// the request; the response carries fallback-quality results instead.
func (h *Handler) ValidateBatch(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Records) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "records are required")
	}
	if len(req.Records) > maxBatchSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("batch exceeds maximum of %d records", maxBatchSize))
	}

	report, err := h.svc.Analyze(c.Request().Context(), req.Records)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	job, err := h.svc.GetJob(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "import job not found")
	}
	return c.JSON(http.StatusOK, job)
}

func (h *Handler) ListJobs(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListJobs(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
