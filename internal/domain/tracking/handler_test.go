package tracking

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo, *mockRepo) {
	t.Helper()
	repo := &mockRepo{}
	svc := NewService(repo)
	return NewHandler(svc), echo.New(), repo
}

func reportQuery(typ string) string {
	start := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	end := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	return "?type=" + typ + "&start_date=" + start + "&end_date=" + end
}

func TestHandler_Report(t *testing.T) {
	h, e, repo := newTestHandler(t)
	repo.Insert(context.Background(), &Movement{
		PatientID:    uuid.New(),
		MovementType: TypeOut,
		OccurredAt:   time.Now(),
		Actor:        "Bob",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/case-note-tracking"+reportQuery("out"), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Report(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("expected one movement in response: %s", rec.Body.String())
	}
}

func TestHandler_Report_MissingDates(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/case-note-tracking?type=out", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Report(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ExportXLSX(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/case-note-tracking/export"+reportQuery("in"), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ExportXLSX(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected xlsx (zip) magic bytes")
	}
	if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), "attachment") {
		t.Error("expected attachment disposition")
	}
}

func TestHandler_ExportPDF(t *testing.T) {
	h, e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/case-note-tracking/pdf"+reportQuery("filling"), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ExportPDF(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected pdf header")
	}
}

func TestHandler_RegisterFilling(t *testing.T) {
	h, e, repo := newTestHandler(t)

	body := `{"patient_id":"` + uuid.NewString() + `","department_id":"` + uuid.NewString() + `","details":"filed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/case-note-tracking/filling", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.RegisterFilling(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if len(repo.movements) != 1 || repo.movements[0].MovementType != TypeFilling {
		t.Error("expected a filling movement to be recorded")
	}
}
