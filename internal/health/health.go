// Package health wires liveness and readiness probes.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// Defaults for Options.
const (
	DefaultGoroutineThreshold = 10000
	DefaultPingTimeout        = 2 * time.Second
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the probes.
type Options struct {
	TranscoderBin      string
	HLSRoot            string
	Store              Pinger
	GoroutineThreshold int
	PingTimeout        time.Duration

	// Registerer, when set, exports each check as a healthcheck_status gauge.
	Registerer prometheus.Registerer
}

type namedCheck struct {
	name  string
	check healthcheck.Check
}

// Checker serves /live and /ready and can run readiness once.
type Checker struct {
	handler   healthcheck.Handler
	readiness []namedCheck
}

// New builds a Checker with the liveness and readiness checks for opts.
func New(opts Options) *Checker {
	if opts.GoroutineThreshold <= 0 {
		opts.GoroutineThreshold = DefaultGoroutineThreshold
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = DefaultPingTimeout
	}

	var h healthcheck.Handler
	if opts.Registerer != nil {
		h = healthcheck.NewMetricsHandler(opts.Registerer, "hlsrelay")
	} else {
		h = healthcheck.NewHandler()
	}
	h.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(opts.GoroutineThreshold))

	c := &Checker{handler: h}
	if opts.TranscoderBin != "" {
		c.addReadiness("transcoder", TranscoderCheck(opts.TranscoderBin))
	}
	if opts.HLSRoot != "" {
		c.addReadiness("hls-root", WritableDirCheck(opts.HLSRoot))
	}
	if opts.Store != nil {
		c.addReadiness("overlay-store", healthcheck.Timeout(PingCheck(opts.Store, opts.PingTimeout), opts.PingTimeout+time.Second))
	}
	return c
}

func (c *Checker) addReadiness(name string, check healthcheck.Check) {
	c.handler.AddReadinessCheck(name, check)
	c.readiness = append(c.readiness, namedCheck{name: name, check: check})
}

// ServeHTTP serves /live and /ready.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.handler.ServeHTTP(w, r)
}

// Live serves the liveness endpoint.
func (c *Checker) Live(w http.ResponseWriter, r *http.Request) {
	c.handler.LiveEndpoint(w, r)
}

// Ready serves the readiness endpoint.
func (c *Checker) Ready(w http.ResponseWriter, r *http.Request) {
	c.handler.ReadyEndpoint(w, r)
}

// Result is the outcome of one readiness check.
type Result struct {
	Name string
	Err  error
}

// RunReadiness runs every readiness check once, in registration order.
func (c *Checker) RunReadiness() ([]Result, error) {
	results := make([]Result, 0, len(c.readiness))
	var errs []error
	for _, nc := range c.readiness {
		err := nc.check()
		results = append(results, Result{Name: nc.name, Err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", nc.name, err))
		}
	}
	return results, errors.Join(errs...)
}

// TranscoderCheck fails when bin cannot be resolved on PATH.
func TranscoderCheck(bin string) healthcheck.Check {
	return func() error {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("transcoder %q not found: %w", bin, err)
		}
		return nil
	}
}

// WritableDirCheck fails unless a file can be created in dir. The directory
// is created when missing.
func WritableDirCheck(dir string) healthcheck.Check {
	return func() error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f, err := os.CreateTemp(dir, ".ready-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	}
}

// PingCheck pings p with a bounded context.
func PingCheck(p Pinger, timeout time.Duration) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return p.Ping(ctx)
	}
}
