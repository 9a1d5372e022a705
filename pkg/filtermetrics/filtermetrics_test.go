package filtermetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// instructionSamples reports how many observations the backend's
// ProgramInstructions histogram has recorded.
func instructionSamples(t *testing.T, backend string) uint64 {
	t.Helper()
	var m dto.Metric
	if err := ProgramInstructions.WithLabelValues(backend).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("reading ProgramInstructions{%s}: %v", backend, err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordCompileIncrementsCountersByBackendAndResult(t *testing.T) {
	before := testutil.ToFloat64(CompilesTotal.WithLabelValues("classic", "ok"))
	RecordCompile("classic", "ok", 0.001, 12)
	after := testutil.ToFloat64(CompilesTotal.WithLabelValues("classic", "ok"))
	if after != before+1 {
		t.Fatalf("CompilesTotal{classic,ok} = %v, want %v", after, before+1)
	}
}

func TestRecordCompileSkipsInstructionHistogramOnFailure(t *testing.T) {
	beforeCount := instructionSamples(t, "classic")
	RecordCompile("classic", "too_long", 0.001, 9999)
	afterCount := instructionSamples(t, "classic")
	if afterCount != beforeCount {
		t.Fatalf("ProgramInstructions observed on a failed compile: before=%v after=%v", beforeCount, afterCount)
	}
}

func TestRecordAttachIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(AttachesTotal.WithLabelValues("extended", "ok"))
	RecordAttach("extended", "ok")
	after := testutil.ToFloat64(AttachesTotal.WithLabelValues("extended", "ok"))
	if after != before+1 {
		t.Fatalf("AttachesTotal{extended,ok} = %v, want %v", after, before+1)
	}
}

func TestRecordReattachIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(ReattachesTotal.WithLabelValues("default", "throttled"))
	RecordReattach("default", "throttled")
	after := testutil.ToFloat64(ReattachesTotal.WithLabelValues("default", "throttled"))
	if after != before+1 {
		t.Fatalf("ReattachesTotal{default,throttled} = %v, want %v", after, before+1)
	}
}
