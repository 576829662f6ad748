package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAPIRequestsCounter(t *testing.T) {
	tests := []struct {
		name   string
		action string
		status string
	}{
		{name: "successful query", action: "query", status: "ok"},
		{name: "transport failure", action: "delete", status: "transport_error"},
		{name: "API rejection", action: "edit", status: "api_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			APIRequests.WithLabelValues(tt.action, tt.status).Inc()

			counter, err := APIRequests.GetMetricWithLabelValues(tt.action, tt.status)
			if err != nil {
				t.Fatalf("failed to get metric: %v", err)
			}

			var m dto.Metric
			if err := counter.Write(&m); err != nil {
				t.Fatalf("failed to write metric: %v", err)
			}

			if m.Counter.GetValue() < 1 {
				t.Error("expected counter to be incremented")
			}
		})
	}
}

func TestAPIRequestDurationObserved(t *testing.T) {
	APIRequestDuration.WithLabelValues("query").Observe(0.05)
	APIRequestDuration.WithLabelValues("query").Observe(1.2)

	obs, err := APIRequestDuration.GetMetricWithLabelValues("query")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}

	h, ok := obs.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer does not expose its metric: %T", obs)
	}

	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if m.Histogram.GetSampleCount() < 2 {
		t.Errorf("expected at least 2 observations, got %d", m.Histogram.GetSampleCount())
	}
}

func TestBatchItemsCounter(t *testing.T) {
	BatchItems.WithLabelValues("move", "ok").Inc()
	BatchItems.WithLabelValues("move", "error").Inc()

	for _, status := range []string{"ok", "error"} {
		counter, err := BatchItems.GetMetricWithLabelValues("move", status)
		if err != nil {
			t.Fatalf("failed to get metric: %v", err)
		}

		var m dto.Metric
		if err := counter.Write(&m); err != nil {
			t.Fatalf("failed to write metric: %v", err)
		}

		if m.Counter.GetValue() < 1 {
			t.Errorf("expected %s counter to be incremented", status)
		}
	}
}

func TestListPagesCounter(t *testing.T) {
	ListPages.WithLabelValues("allpages").Inc()

	counter, err := ListPages.GetMetricWithLabelValues("allpages")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}

	var m dto.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if m.Counter.GetValue() < 1 {
		t.Error("expected counter to be incremented")
	}
}
