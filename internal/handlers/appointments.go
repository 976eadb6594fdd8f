package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonbook/internal/booking"
	"salonbook/internal/directory"
	"salonbook/internal/httpx"
	"salonbook/internal/store"
	"salonbook/internal/transport"
)

func (s *Server) GetAppointment(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("appointments get: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	appointment, err := s.Store.Get(id)
	if err != nil {
		log.Warn("appointments get: not found", slog.String("appointment_id", id))
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	}

	log.Info("appointments get: ok", slog.String("appointment_id", id))
	transport.WriteJSON(w, http.StatusOK, appointment)
}

type MoveAppointmentRequest struct {
	Date    string `json:"date" validate:"required,date"`
	StaffID string `json:"staffId" validate:"required"`
	Time    string `json:"time" validate:"required,clock"`
}

// MoveAppointment relocates a booked appointment to another slot, column
// or day. This is the drag-and-drop path: duration is preserved, and on
// overlap the appointment stays where it was and the conflict is returned.
func (s *Server) MoveAppointment(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("appointments move: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req MoveAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("appointments move: invalid json", slog.String("appointment_id", id))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("appointments move: validation error", slog.String("appointment_id", id))
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	if _, err := s.Dir.StaffByID(r.Context(), req.StaffID); err != nil {
		if errors.Is(err, directory.ErrStaffNotFound) {
			log.Warn("appointments move: staff not found", slog.String("staff_id", req.StaffID))
			transport.WriteError(w, http.StatusBadRequest, "staff not found", nil)
			return
		}
		log.Error("appointments move: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	previous, err := s.Store.Get(id)
	if err != nil {
		log.Warn("appointments move: not found", slog.String("appointment_id", id))
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	}

	moved, conflict, err := s.Store.Move(r.Context(), id, req.Date, req.StaffID, req.Time)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
			return
		}
		if conflict != nil {
			log.Warn("appointments move: overlap",
				slog.String("appointment_id", id),
				slog.String("date", req.Date),
				slog.String("time", req.Time),
			)
			transport.WriteJSON(w, http.StatusConflict, map[string]interface{}{
				"error":    "slot not available",
				"conflict": conflict,
			})
			return
		}
		log.Error("appointments move: error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid move", nil)
		return
	}

	if s.Cache != nil {
		_ = s.Cache.DeletePrefix(r.Context(), "availability:"+previous.Date+":")
		if moved.Date != previous.Date {
			_ = s.Cache.DeletePrefix(r.Context(), "availability:"+moved.Date+":")
		}
	}

	log.Info("appointments move: ok",
		slog.String("appointment_id", id),
		slog.String("date", moved.Date),
		slog.String("time", moved.Start),
		slog.String("staff_id", moved.StaffID),
	)
	transport.WriteJSON(w, http.StatusOK, moved)
}

type AdminListQuery struct {
	Date    string `validate:"omitempty,date"`
	StaffID string
	Status  string `validate:"omitempty,oneof=scheduled confirmed paid no_show canceled"`
}

func (s *Server) AdminListAppointments(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	q := AdminListQuery{
		Date:    r.URL.Query().Get("date"),
		StaffID: r.URL.Query().Get("staffId"),
		Status:  r.URL.Query().Get("status"),
	}
	if err := s.Val.Struct(q); err != nil {
		log.Warn("admin appointments list: invalid query")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "invalid query", details)
		return
	}

	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 100, 500)
	if err != nil {
		log.Warn("admin appointments list: invalid pagination")
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	appointments := s.Store.Appointments()
	filtered := make([]booking.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if q.Date != "" && a.Date != q.Date {
			continue
		}
		if q.StaffID != "" && a.StaffID != q.StaffID {
			continue
		}
		if q.Status != "" && string(a.Status) != q.Status {
			continue
		}
		filtered = append(filtered, a)
	}

	total := len(filtered)
	if offset > int64(len(filtered)) {
		offset = int64(len(filtered))
	}
	page := filtered[offset:]
	if int64(len(page)) > limit {
		page = page[:limit]
	}

	log.Info("admin appointments list: ok", slog.Int("count", len(page)), slog.Int("total", total))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": page,
		"total":        total,
	})
}

type AdminStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed paid no_show canceled"`
}

func (s *Server) AdminUpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("admin appointments status: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req AdminStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("admin appointments status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin appointments status: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	status := booking.Status(req.Status)
	updated, err := s.Store.Update(r.Context(), id, store.UpdatePatch{Status: &status})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("admin appointments status: not found", slog.String("appointment_id", id))
			transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
			return
		}
		log.Error("admin appointments status: error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "update error", nil)
		return
	}

	// Canceling frees the slot for rebooking.
	if s.Cache != nil && status == booking.StatusCanceled {
		_ = s.Cache.DeletePrefix(r.Context(), "availability:"+updated.Date+":")
	}

	log.Info("admin appointments status: ok",
		slog.String("appointment_id", id),
		slog.String("status", req.Status),
	)
	transport.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) AdminDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("admin appointments delete: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	appointment, err := s.Store.Get(id)
	if err != nil {
		log.Warn("admin appointments delete: not found", slog.String("appointment_id", id))
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		log.Error("admin appointments delete: error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "delete error", nil)
		return
	}

	if s.Cache != nil {
		_ = s.Cache.DeletePrefix(r.Context(), "availability:"+appointment.Date+":")
	}

	log.Info("admin appointments delete: ok", slog.String("appointment_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendBookingConfirmationEmail(log *slog.Logger, appointment booking.Appointment, service directory.Service) {
	if s.Mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	messageID, err := s.Mailer.SendBookingConfirmation(ctx, appointment, service)
	if err != nil {
		log.Warn("appointments email: send failed",
			slog.String("appointment_id", appointment.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	log.Info("appointments email: sent",
		slog.String("appointment_id", appointment.ID),
		slog.String("message_id", messageID),
	)
}
