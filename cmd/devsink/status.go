package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	eventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devsink_events_received_total",
		Help: "Log events accepted across all batches.",
	})
	errorsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devsink_errors_received_total",
		Help: "Error reports accepted across all batches.",
	})
	rejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devsink_requests_rejected_total",
		Help: "Requests rejected for auth or payload problems.",
	})
)

var startTime = time.Now()

type statusResponse struct {
	Status         string  `json:"status"`
	Uptime         string  `json:"uptime"`
	EventsReceived float64 `json:"events_received"`
	ErrorsReceived float64 `json:"errors_received"`
	Rejected       float64 `json:"rejected"`
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:         "ok",
		Uptime:         time.Since(startTime).String(),
		EventsReceived: counterValue(eventsReceived),
		ErrorsReceived: counterValue(errorsReceived),
		Rejected:       counterValue(rejectedTotal),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
