// Package bench repeats one HTTP transaction and summarizes its latency.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/curless/curless/http"
)

// Histogram range: 1 microsecond to 1 hour, 3 significant figures
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Runner executes Requests transactions one after another. Every iteration
// gets a fresh builder from Build, so nothing is shared or retried. Rate
// caps iterations per second; zero means unlimited.
type Runner struct {
	Requests int
	Rate     float64
	Build    func() *http.Request
	Logger   zerolog.Logger
}

// Stats are latency statistics over the recorded transactions.
type Stats struct {
	Min  time.Duration `json:"min" yaml:"min"`
	Max  time.Duration `json:"max" yaml:"max"`
	Mean time.Duration `json:"mean" yaml:"mean"`
	P50  time.Duration `json:"p50" yaml:"p50"`
	P90  time.Duration `json:"p90" yaml:"p90"`
	P95  time.Duration `json:"p95" yaml:"p95"`
	P99  time.Duration `json:"p99" yaml:"p99"`
}

// Report summarizes a run.
type Report struct {
	Total     int           `json:"total" yaml:"total"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	Errors    int           `json:"transportErrors" yaml:"transportErrors"`
	Statuses  map[int]int   `json:"statuses" yaml:"statuses"`
	Bytes     int64         `json:"bytes" yaml:"bytes"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	Latency   Stats         `json:"latency" yaml:"latency"`
}

// Run executes the transactions. It stops early only when ctx is done or
// a request cannot be built as configured; a failed transaction is counted
// and the run continues.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Requests < 1 {
		return nil, fmt.Errorf("request count must be at least 1")
	}
	if r.Build == nil {
		return nil, fmt.Errorf("no request builder configured")
	}

	var limiter *rate.Limiter
	if r.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.Rate), 1)
	}

	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	report := &Report{Statuses: make(map[int]int)}
	start := time.Now()

	for i := 0; i < r.Requests; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		began := time.Now()
		result, err := r.Build().Execute(ctx)
		latency := time.Since(began)

		if err != nil {
			var te *http.TransportError
			if !errors.As(err, &te) {
				return nil, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			report.Errors++
			report.Failed++
			r.Logger.Debug().Int("iteration", i+1).Err(err).Msg("transaction failed")
		} else {
			report.Statuses[result.Status]++
			report.Bytes += int64(len(result.Body))
			if result.Status >= 200 && result.Status < 400 {
				report.Succeeded++
			} else {
				report.Failed++
			}
			r.Logger.Debug().Int("iteration", i+1).Int("status", result.Status).Dur("latency", latency).Msg("transaction complete")
		}

		report.Total++
		recordLatency(hist, latency)
	}

	report.Elapsed = time.Since(start)
	report.Latency = statsFrom(hist)
	return report, nil
}

func recordLatency(hist *hdrhistogram.Histogram, d time.Duration) {
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}
	_ = hist.RecordValue(micros)
}

func statsFrom(hist *hdrhistogram.Histogram) Stats {
	return Stats{
		Min:  time.Duration(hist.Min()) * time.Microsecond,
		Max:  time.Duration(hist.Max()) * time.Microsecond,
		Mean: time.Duration(hist.Mean()) * time.Microsecond,
		P50:  time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:  time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:  time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:  time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
	}
}

// Throughput is completed transactions per second of wall-clock time.
func (r *Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Total) / r.Elapsed.Seconds()
}

// String renders the report for the terminal.
func (r *Report) String() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Transactions: %d (%d succeeded, %d failed, %d transport errors)\n",
		r.Total, r.Succeeded, r.Failed, r.Errors)
	fmt.Fprintf(&buf, "Elapsed:      %s (%.2f req/s)\n", r.Elapsed.Round(time.Millisecond), r.Throughput())
	fmt.Fprintf(&buf, "Received:     %d bytes\n", r.Bytes)

	if len(r.Statuses) > 0 {
		codes := make([]int, 0, len(r.Statuses))
		for code := range r.Statuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		buf.WriteString("Status codes:\n")
		for _, code := range codes {
			fmt.Fprintf(&buf, "  %d: %d\n", code, r.Statuses[code])
		}
	}

	buf.WriteString("Latency:\n")
	fmt.Fprintf(&buf, "  min  %s\n", r.Latency.Min)
	fmt.Fprintf(&buf, "  mean %s\n", r.Latency.Mean)
	fmt.Fprintf(&buf, "  p50  %s\n", r.Latency.P50)
	fmt.Fprintf(&buf, "  p90  %s\n", r.Latency.P90)
	fmt.Fprintf(&buf, "  p95  %s\n", r.Latency.P95)
	fmt.Fprintf(&buf, "  p99  %s\n", r.Latency.P99)
	fmt.Fprintf(&buf, "  max  %s\n", r.Latency.Max)

	return buf.String()
}
