package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salonbook/internal/booking"
	"salonbook/internal/store"
	"salonbook/internal/transport"
)

type WaitlistQuery struct {
	Status string `validate:"omitempty,oneof=waiting converted removed"`
}

func (s *Server) AdminListWaitlist(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	q := WaitlistQuery{Status: r.URL.Query().Get("status")}
	if err := s.Val.Struct(q); err != nil {
		log.Warn("admin waitlist list: invalid query")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "invalid query", details)
		return
	}

	status := booking.WaitlistWaiting
	if q.Status != "" {
		status = booking.WaitlistStatus(q.Status)
	}

	entries := s.Store.Waitlist(status)
	log.Info("admin waitlist list: ok", slog.Int("count", len(entries)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

type WaitlistStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=waiting converted removed"`
}

// AdminUpdateWaitlist marks an entry converted once the client got a real
// slot, or removed when they gave up waiting.
func (s *Server) AdminUpdateWaitlist(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("admin waitlist update: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req WaitlistStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("admin waitlist update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin waitlist update: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	entry, err := s.Store.MarkWaitlist(r.Context(), id, booking.WaitlistStatus(req.Status))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("admin waitlist update: not found", slog.String("entry_id", id))
			transport.WriteError(w, http.StatusNotFound, "waitlist entry not found", nil)
			return
		}
		log.Error("admin waitlist update: error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "update error", nil)
		return
	}

	log.Info("admin waitlist update: ok",
		slog.String("entry_id", id),
		slog.String("status", req.Status),
	)
	transport.WriteJSON(w, http.StatusOK, entry)
}
