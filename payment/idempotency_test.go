package payment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReplayableExcludesServerErrors(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusBadRequest, http.StatusConflict} {
		if !replayable(status) {
			t.Fatalf("status %d should be stored for replay", status)
		}
	}
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable} {
		if replayable(status) {
			t.Fatalf("status %d must not be stored for replay", status)
		}
	}
}

func TestComputeRequestHashSensitivity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-order", nil)
	base := computeRequestHash(req, []byte(`{"amount":499}`), "user1")

	if got := computeRequestHash(req, []byte(`{"amount":999}`), "user1"); got == base {
		t.Fatal("hash ignores body")
	}
	if got := computeRequestHash(req, []byte(`{"amount":499}`), "user2"); got == base {
		t.Fatal("hash ignores user")
	}
	other := httptest.NewRequest(http.MethodPost, "/api/booking/create", nil)
	if got := computeRequestHash(other, []byte(`{"amount":499}`), "user1"); got == base {
		t.Fatal("hash ignores path")
	}
	if got := computeRequestHash(req, []byte(`{"amount":499}`), "user1"); got != base {
		t.Fatal("hash not deterministic")
	}
}

func TestCaptureResponseWriterRecordsStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	crw := &captureResponseWriter{w: rec, statusCode: http.StatusOK}

	crw.WriteHeader(http.StatusBadGateway)
	crw.WriteHeader(http.StatusOK) // later writes must not mask the first status
	crw.Write([]byte(`{"error":"payment gateway error"}`))

	if crw.statusCode != http.StatusBadGateway {
		t.Fatalf("expected recorded 502, got %d", crw.statusCode)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected passthrough 502, got %d", rec.Code)
	}
	if !strings.Contains(crw.buf.String(), "payment gateway error") {
		t.Fatalf("body not captured: %q", crw.buf.String())
	}
}
