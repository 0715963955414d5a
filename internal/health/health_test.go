package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type fakePinger struct {
	err   error
	delay time.Duration
}

func (f fakePinger) Ping(ctx context.Context) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveAndReadyOK(t *testing.T) {
	c := New(Options{
		TranscoderBin: "sh",
		HLSRoot:       filepath.Join(t.TempDir(), "hls"),
		Store:         fakePinger{},
	})

	if rec := serve(c, "/live"); rec.Code != http.StatusOK {
		t.Errorf("/live = %d, want 200", rec.Code)
	}
	if rec := serve(c, "/ready"); rec.Code != http.StatusOK {
		t.Errorf("/ready = %d, want 200: %s", rec.Code, rec.Body)
	}
}

func TestReadyFailsOnStoreError(t *testing.T) {
	c := New(Options{Store: fakePinger{err: errors.New("connection refused")}})

	rec := serve(c, "/ready?full=1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "overlay-store") {
		t.Errorf("full body does not name the failing check: %s", rec.Body)
	}
	if rec := serve(c, "/live"); rec.Code != http.StatusOK {
		t.Errorf("/live = %d; readiness failures must not affect liveness", rec.Code)
	}
}

func TestPingCheckTimesOut(t *testing.T) {
	check := PingCheck(fakePinger{delay: time.Second}, 20*time.Millisecond)
	if err := check(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTranscoderCheck(t *testing.T) {
	if err := TranscoderCheck("sh")(); err != nil {
		t.Errorf("sh should be on PATH: %v", err)
	}
	if err := TranscoderCheck("definitely-not-a-transcoder-binary")(); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestWritableDirCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "hls")
	if err := WritableDirCheck(dir)(); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WritableDirCheck(file)(); err == nil {
		t.Error("expected error when the path is a regular file")
	}
}

func TestRunReadiness(t *testing.T) {
	c := New(Options{
		TranscoderBin: "definitely-not-a-transcoder-binary",
		HLSRoot:       t.TempDir(),
		Store:         fakePinger{},
	})

	results, err := c.RunReadiness()
	if err == nil || !strings.Contains(err.Error(), "transcoder") {
		t.Errorf("err = %v, want transcoder failure", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	names := []string{"transcoder", "hls-root", "overlay-store"}
	for i, r := range results {
		if r.Name != names[i] {
			t.Errorf("results[%d] = %s, want %s", i, r.Name, names[i])
		}
	}
	if results[0].Err == nil || results[1].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestMetricsHandlerRegistersGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(Options{Store: fakePinger{}, Registerer: reg})
	serve(c, "/ready")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if strings.HasSuffix(f.GetName(), "healthcheck_status") {
			found = true
		}
	}
	if !found {
		t.Error("healthcheck_status gauge not registered")
	}
}
