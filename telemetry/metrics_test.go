package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type recordingObserver struct {
	observed []float64
}

func (r *recordingObserver) Observe(v float64) { r.observed = append(r.observed, v) }

var _ prometheus.Observer = (*recordingObserver)(nil)

func TestTimeFunc(t *testing.T) {
	obs := &recordingObserver{}
	ran := false
	d := TimeFunc(obs, func() {
		ran = true
		time.Sleep(time.Millisecond)
	})
	if !ran {
		t.Fatal("fn did not run")
	}
	if d < time.Millisecond {
		t.Fatalf("duration = %v", d)
	}
	if len(obs.observed) != 1 || obs.observed[0] <= 0 {
		t.Fatalf("observed = %v", obs.observed)
	}
}

func TestTimeFuncNilObserver(t *testing.T) {
	ran := false
	if d := TimeFunc(nil, func() { ran = true }); !ran || d < 0 {
		t.Fatalf("ran=%v d=%v", ran, d)
	}
}

func TestCorrelation(t *testing.T) {
	ctx := context.Background()
	if GetCorrelation(ctx) != "" {
		t.Fatal("empty context must carry no correlation id")
	}
	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Fatalf("got %q", got)
	}
	if LogWith(ctx) == nil {
		t.Fatal("LogWith returned nil")
	}
}
