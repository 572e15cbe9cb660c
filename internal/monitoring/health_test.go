package monitoring

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/edgeflow/edgeinfer/internal/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	hdr := model.Header{T: 16, F: 6, H: 3, Hidden: 32}
	m, err := model.FromBuffer(hdr, make([]float32, hdr.TotalFloats()))
	if err != nil {
		t.Fatalf("FromBuffer: %v", err)
	}
	return New(m, "/data/model_fp32.bin")
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestStatusReportsModelDimensions(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Model.Loaded {
		t.Error("model not reported as loaded")
	}
	if status.Model.T != 16 || status.Model.F != 6 || status.Model.H != 3 || status.Model.Hidden != 32 {
		t.Errorf("model dims = %d/%d/%d/%d, want 16/6/3/32",
			status.Model.T, status.Model.F, status.Model.H, status.Model.Hidden)
	}
	if status.Model.TotalFloats == 0 {
		t.Error("total_floats missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
