package opening

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casetrack/casetrack/internal/platform/auth"
	"github.com/casetrack/casetrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	staff := g.Group("", auth.RequireRole(auth.RoleMRStaff, auth.RoleCA))
	staff.POST("/opened-case-notes", h.Open)
	staff.GET("/opened-case-notes", h.ListActive)
	staff.POST("/opened-case-notes/:id/return", h.Return)
}

func (h *Handler) Open(c echo.Context) error {
	var req OpenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}

	o, err := h.svc.Open(c.Request().Context(), userID, auth.UserNameFromContext(c.Request().Context()), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListActive(c echo.Context) error {
	params := pagination.FromContext(c)
	notes, total, err := h.svc.ListActive(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(notes, total, params.Limit, params.Offset))
}

func (h *Handler) Return(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid opened case note id")
	}

	o, err := h.svc.Return(c.Request().Context(), id, auth.UserNameFromContext(c.Request().Context()))
	if err != nil {
		if errors.Is(err, ErrAlreadyReturned) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}
