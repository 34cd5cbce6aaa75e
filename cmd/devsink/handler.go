package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/auth"
	"github.com/predatorx7/logship/pkg/model"
)

// eventBatch mirrors the logger's flush payload.
type eventBatch struct {
	Events    []model.LogEvent `json:"events"`
	SessionID string           `json:"sessionId"`
	Timestamp time.Time        `json:"timestamp"`
}

// errorBatch mirrors the reporter's flush payload.
type errorBatch struct {
	Errors    []model.ErrorReport `json:"errors"`
	SessionID string              `json:"sessionId"`
	Timestamp time.Time           `json:"timestamp"`
}

type handler struct {
	cfg  config
	logg zerolog.Logger
}

func newHandler(cfg config, logg zerolog.Logger) *handler {
	return &handler{cfg: cfg, logg: logg}
}

// authorize verifies the source key when auth is enforced. Returns the
// source id, or writes a 401 and returns false.
func (h *handler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !h.cfg.RequireAuth {
		return "", true
	}
	key := r.Header.Get("X-API-Key")
	if key == "" {
		rejectedTotal.Inc()
		http.Error(w, "Missing source key", http.StatusUnauthorized)
		return "", false
	}
	sourceID, err := auth.Verify(key, []byte(h.cfg.AuthSecret))
	if err != nil {
		rejectedTotal.Inc()
		http.Error(w, "Invalid source key", http.StatusUnauthorized)
		return "", false
	}
	return sourceID, true
}

func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var batch eventBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		rejectedTotal.Inc()
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	eventsReceived.Add(float64(len(batch.Events)))
	h.logg.Info().
		Str("source", sourceID).
		Str("session_id", batch.SessionID).
		Int("events", len(batch.Events)).
		Msg("event batch received")

	if h.cfg.PrintBodies {
		for _, ev := range batch.Events {
			h.logg.Info().
				Str("level", string(ev.Level)).
				Str("component", ev.Component).
				Interface("context", ev.Context).
				Msg(ev.Message)
		}
	}

	accepted(w)
}

func (h *handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var batch errorBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		rejectedTotal.Inc()
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	errorsReceived.Add(float64(len(batch.Errors)))
	h.logg.Info().
		Str("source", sourceID).
		Str("session_id", batch.SessionID).
		Int("errors", len(batch.Errors)).
		Msg("error batch received")

	if h.cfg.PrintBodies {
		for _, rep := range batch.Errors {
			h.logg.Warn().
				Str("id", rep.ID).
				Str("severity", string(rep.Severity)).
				Str("category", string(rep.Category)).
				Bool("resolved", rep.Resolved).
				Msg(rep.Message)
		}
	}

	accepted(w)
}

func accepted(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"accepted"}`))
}
