package cbhts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abt/cbhts-integration/pkg/pagination"
)

type stubPageFetcher struct {
	page *pagination.Page[OutputRecord]
	err  error
	got  *Request
}

func (s *stubPageFetcher) Fetch(_ context.Context, req *Request) (*pagination.Page[OutputRecord], error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	if errs := ValidateRequest(req); len(errs) > 0 {
		return nil, &ValidationError{Details: errs}
	}
	return s.page, nil
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/integration/ctc2hts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.FetchServices(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

// =========== FetchServices ===========

func TestHandler_FetchServices_OK(t *testing.T) {
	svc := &stubPageFetcher{page: pagination.NewPage[OutputRecord](pagination.Params{PageIndex: 2, PageSize: 5}, 7, nil)}
	h := NewHandler(svc, zerolog.Nop())

	rec := postJSON(t, h, `{"hfrCode":"13211-1","startDate":1766188800,"endDate":1766275199,"pageIndex":2,"pageSize":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `{"pageNumber":2,"pageSize":5,"totalRecords":7,"data":[]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if svc.got == nil || *svc.got.HFRCode != "13211-1" || *svc.got.StartDate != 1766188800 {
		t.Errorf("request not bound: %+v", svc.got)
	}
}

func TestHandler_FetchServices_ValidationErrors(t *testing.T) {
	h := NewHandler(&stubPageFetcher{}, zerolog.Nop())

	rec := postJSON(t, h, `{"hfrCode":"13211-1","startDate":200,"endDate":100,"pageIndex":0,"pageSize":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Message != "Invalid request payload" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if len(resp.Details) != 2 {
		t.Errorf("expected 2 details, got %v", resp.Details)
	}
}

func TestHandler_FetchServices_EmptyBody(t *testing.T) {
	h := NewHandler(&stubPageFetcher{}, zerolog.Nop())

	rec := postJSON(t, h, ``)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if len(resp.Details) != 1 || resp.Details[0] != "Request body is required" {
		t.Errorf("unexpected details %v", resp.Details)
	}
}

func TestHandler_FetchServices_MalformedJSON(t *testing.T) {
	svc := &stubPageFetcher{}
	h := NewHandler(svc, zerolog.Nop())

	rec := postJSON(t, h, `{"hfrCode":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Message != "Invalid request payload" || len(resp.Details) != 1 {
		t.Errorf("unexpected body %+v", resp)
	}
	if svc.got != nil {
		t.Error("service must not be called on a bind failure")
	}
}

func TestHandler_FetchServices_StoreFailure(t *testing.T) {
	h := NewHandler(&stubPageFetcher{err: errors.New("fetch cbhts services: connection refused")}, zerolog.Nop())

	rec := postJSON(t, h, `{"hfrCode":"13211-1","startDate":1,"endDate":2,"pageIndex":1,"pageSize":5}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Message != "Failed to process integration request" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if len(resp.Details) != 1 || !strings.Contains(resp.Details[0], "connection refused") {
		t.Errorf("unexpected details %v", resp.Details)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	e := echo.New()
	h := NewHandler(&stubPageFetcher{}, zerolog.Nop())
	h.RegisterRoutes(e.Group("/integration"))

	found := false
	for _, r := range e.Routes() {
		if r.Method == http.MethodPost && r.Path == "/integration/ctc2hts" {
			found = true
		}
	}
	if !found {
		t.Error("POST /integration/ctc2hts not registered")
	}
}
