package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if fetchDurationSeconds == nil || recordsExtractedTotal == nil ||
		recordsStoredTotal == nil || runsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestCountersAccumulate(t *testing.T) {
	Init()

	before := testutil.ToFloat64(recordsExtractedTotal)
	AddExtracted(3)
	if got := testutil.ToFloat64(recordsExtractedTotal); got != before+3 {
		t.Fatalf("expected extracted counter %v, got %v", before+3, got)
	}

	before = testutil.ToFloat64(recordsStoredTotal)
	AddStored(2)
	if got := testutil.ToFloat64(recordsStoredTotal); got != before+2 {
		t.Fatalf("expected stored counter %v, got %v", before+2, got)
	}

	before = testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeSuccess))
	IncRun(OutcomeSuccess)
	if got := testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeSuccess)); got != before+1 {
		t.Fatalf("expected runs counter %v, got %v", before+1, got)
	}
}

func TestHelpersTolerateUninitializedState(t *testing.T) {
	// Helpers must be safe to call before Init; they simply drop the
	// observation. This mirrors how library code uses the package.
	saved := fetchDurationSeconds
	fetchDurationSeconds = nil
	defer func() { fetchDurationSeconds = saved }()

	ObserveFetch(200, 150*time.Millisecond)
}
