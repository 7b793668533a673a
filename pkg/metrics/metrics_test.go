package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A second registration on the same registry must fail
	if err := Register(registry); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestDecisionsTotal(t *testing.T) {
	DecisionsTotal.Reset()
	DecisionsTotal.WithLabelValues("first_request", OutcomeSent, "").Inc()
	DecisionsTotal.WithLabelValues("first_request", OutcomeSent, "").Inc()

	if got := testutil.ToFloat64(DecisionsTotal.WithLabelValues("first_request", OutcomeSent, "")); got != 2 {
		t.Errorf("nudge_decisions_total = %v, expected 2", got)
	}
}
