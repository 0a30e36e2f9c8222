package tracking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casetrack/casetrack/internal/platform/auth"
	"github.com/casetrack/casetrack/internal/platform/export"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	staff := g.Group("", auth.RequireRole(auth.RoleMRStaff, auth.RoleCA))
	staff.GET("/case-note-tracking", h.Report)
	staff.GET("/case-note-tracking/export", h.ExportXLSX)
	staff.GET("/case-note-tracking/pdf", h.ExportPDF)
	staff.GET("/case-note-tracking/csv", h.ExportCSV)
	staff.POST("/case-note-tracking/filling", h.RegisterFilling)
}

func (h *Handler) Report(c echo.Context) error {
	params, changed, err := paramsFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	movements, err := h.svc.Report(c.Request().Context(), params, changed)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if movements == nil {
		movements = []*Movement{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     len(movements),
	})
}

func (h *Handler) ExportXLSX(c echo.Context) error {
	return h.export(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.XLSX)
}

func (h *Handler) ExportPDF(c echo.Context) error {
	return h.export(c, "pdf", "application/pdf", export.PDF)
}

func (h *Handler) ExportCSV(c echo.Context) error {
	return h.export(c, "csv", "text/csv", export.CSV)
}

// export renders the report through the given encoder. Failures surface as
// HTTP errors rather than silent empty downloads.
func (h *Handler) export(c echo.Context, ext, contentType string, encode func(export.Table) ([]byte, error)) error {
	params, changed, err := paramsFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	table, err := h.svc.ReportTable(c.Request().Context(), params, changed)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	blob, err := encode(table)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("render %s export: %v", ext, err))
	}

	filename := fmt.Sprintf("case-note-tracking-%s-%s.%s",
		params.Type, time.Now().Format("20060102"), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, contentType, blob)
}

func (h *Handler) RegisterFilling(c echo.Context) error {
	var req FillingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.RegisterFilling(c.Request().Context(), auth.UserNameFromContext(c.Request().Context()), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func paramsFromQuery(c echo.Context) (ReportParams, string, error) {
	p := ReportParams{Type: c.QueryParam("type")}

	var err error
	if p.StartDate, err = parseDate(c.QueryParam("start_date")); err != nil {
		return p, "", fmt.Errorf("invalid start_date: %w", err)
	}
	if p.EndDate, err = parseDate(c.QueryParam("end_date")); err != nil {
		return p, "", fmt.Errorf("invalid end_date: %w", err)
	}

	if v := c.QueryParam("department_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return p, "", fmt.Errorf("invalid department_id")
		}
		p.DepartmentID = &id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return p, "", fmt.Errorf("invalid doctor_id")
		}
		p.DoctorID = &id
	}

	// which date the client last edited, for clamp direction
	changed := c.QueryParam("changed")
	return p, changed, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", v)
}
