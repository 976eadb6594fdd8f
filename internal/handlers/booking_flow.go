package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salonbook/internal/booking"
	"salonbook/internal/directory"
	"salonbook/internal/flow"
	"salonbook/internal/transport"
)

type CreateFlowRequest struct {
	Mode    string `json:"mode" validate:"omitempty,oneof=booking waitlist"`
	StaffID string `json:"staffId"`
	Date    string `json:"date" validate:"omitempty,date"`
	Time    string `json:"time" validate:"omitempty,clock"`
}

// CreateFlow opens a wizard session. Clicking an open slot in the calendar
// grid sends staffId+date+time so the session starts at the service step.
func (s *Server) CreateFlow(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req CreateFlowRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("flow create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("flow create: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	mode := flow.ModeBooking
	if req.Mode == string(flow.ModeWaitlist) {
		mode = flow.ModeWaitlist
	}

	pre := flow.Draft{}
	if mode == flow.ModeBooking {
		pre = pre.WithStaff(req.StaffID)
	}
	pre = pre.WithDate(req.Date).WithTime(req.Time)

	session := s.Flow.Create(mode, pre)
	log.Info("flow create: ok",
		slog.String("session_id", session.ID),
		slog.String("mode", string(mode)),
		slog.String("step", string(session.Step())),
	)
	transport.WriteJSON(w, http.StatusCreated, session)
}

func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")

	var snapshot flow.Session
	err := s.Flow.Do(id, func(session *flow.Session) error {
		snapshot = *session
		return nil
	})
	if err != nil {
		log.Warn("flow get: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, snapshot)
}

type FlowSelectionRequest struct {
	StaffID     string `json:"staffId"`
	Date        string `json:"date" validate:"omitempty,date"`
	Time        string `json:"time" validate:"omitempty,clock"`
	ServiceID   string `json:"serviceId"`
	ClientID    string `json:"clientId"`
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail" validate:"omitempty,email"`
	Recurrence  string `json:"recurrence" validate:"omitempty,pattern"`
	Duration    string `json:"duration" validate:"omitempty,span"`
}

// ApplySelection records the current step's choice on the draft and
// advances. Only the fields for the active step are read; anything else
// in the body is ignored.
func (s *Server) ApplySelection(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")

	var req FlowSelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("flow select: invalid json", slog.String("session_id", id))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("flow select: validation error", slog.String("session_id", id))
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	var snapshot flow.Session
	var stepErr error
	err := s.Flow.Do(id, func(session *flow.Session) error {
		switch session.Step() {
		case flow.StepStaff:
			session.Draft = session.Draft.WithStaff(req.StaffID)
		case flow.StepDate:
			session.Draft = session.Draft.WithDate(req.Date)
		case flow.StepTime:
			session.Draft = session.Draft.WithTime(req.Time)
		case flow.StepService:
			session.Draft = session.Draft.WithService(req.ServiceID)
			pattern, err := booking.ParseRecurrenceLabel(req.Recurrence)
			if err != nil {
				stepErr = err
				return nil
			}
			span := booking.DurationSpec{}
			if req.Duration != "" {
				span, err = booking.ParseSpanLabel(req.Duration)
				if err != nil {
					stepErr = err
					return nil
				}
			}
			session.Draft = session.Draft.WithRecurrence(pattern, span)
		case flow.StepClient:
			session.Draft = session.Draft.WithClient(req.ClientID, req.ClientName, req.ClientEmail)
		}
		session.Next()
		snapshot = *session
		return nil
	})
	if err != nil {
		log.Warn("flow select: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	if stepErr != nil {
		log.Warn("flow select: bad label", slog.String("session_id", id))
		transport.WriteError(w, http.StatusBadRequest, stepErr.Error(), nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, snapshot)
}

type FlowGoToRequest struct {
	Step string `json:"step" validate:"required,oneof=staff date time service client"`
}

// GoToStep jumps anywhere in the wizard; the step strip is freely
// clickable in both directions.
func (s *Server) GoToStep(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")

	var req FlowGoToRequest
	if err := decodeJSON(r, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	var snapshot flow.Session
	var stepErr error
	err := s.Flow.Do(id, func(session *flow.Session) error {
		stepErr = session.GoTo(flow.Step(req.Step))
		snapshot = *session
		return nil
	})
	if err != nil {
		log.Warn("flow goto: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	if stepErr != nil {
		transport.WriteError(w, http.StatusBadRequest, "unknown step", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, snapshot)
}

func (s *Server) FlowBack(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")

	var snapshot flow.Session
	err := s.Flow.Do(id, func(session *flow.Session) error {
		session.Prev()
		snapshot = *session
		return nil
	})
	if err != nil {
		log.Warn("flow back: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, snapshot)
}

func (s *Server) ResetFlow(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")

	var snapshot flow.Session
	err := s.Flow.Do(id, func(session *flow.Session) error {
		session.Reset()
		snapshot = *session
		return nil
	})
	if err != nil {
		log.Warn("flow reset: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	log.Info("flow reset: ok", slog.String("session_id", id))
	transport.WriteJSON(w, http.StatusOK, snapshot)
}

// CancelFlow discards the session and its draft. Nothing was written, so
// there is nothing to undo.
func (s *Server) CancelFlow(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	s.Flow.Delete(id)
	log.Info("flow cancel: ok", slog.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// CommitFlow validates the draft and books it. On a recoverable conflict
// the session stays open at the service step and the conflict is returned
// with a 409; on success the session is closed.
func (s *Server) CommitFlow(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")

	var result flow.CommitResult
	var commitErr error
	err := s.Flow.Do(id, func(session *flow.Session) error {
		result, commitErr = s.Committer.Commit(r.Context(), session)
		return nil
	})
	if err != nil {
		log.Warn("flow commit: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}

	if commitErr != nil {
		var ve *flow.ValidationError
		switch {
		case errors.As(commitErr, &ve):
			details := make(map[string]string, len(ve.Missing))
			for _, field := range ve.Missing {
				details[field] = "required"
			}
			log.Warn("flow commit: incomplete draft", slog.String("session_id", id))
			transport.WriteError(w, http.StatusBadRequest, "incomplete booking", details)
		case errors.Is(commitErr, flow.ErrOutsideBookingWindow):
			log.Warn("flow commit: outside booking window", slog.String("session_id", id))
			transport.WriteError(w, http.StatusBadRequest, "time outside booking window", nil)
		case errors.Is(commitErr, directory.ErrServiceNotFound):
			transport.WriteError(w, http.StatusBadRequest, "service not found", nil)
		case errors.Is(commitErr, directory.ErrStaffNotFound), errors.Is(commitErr, directory.ErrNoStaffAvailable):
			transport.WriteError(w, http.StatusBadRequest, "no staff available", nil)
		default:
			log.Error("flow commit: error", slog.String("error", commitErr.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "booking error", nil)
		}
		return
	}

	if !result.Committed() {
		log.Warn("flow commit: conflict",
			slog.String("session_id", id),
			slog.String("reason", string(result.Conflict.Reason)),
			slog.String("date", result.Conflict.Date),
		)
		transport.WriteJSON(w, http.StatusConflict, result)
		return
	}

	s.Flow.Delete(id)
	s.invalidateAvailability(r, result.Appointments)

	if s.Mailer != nil && len(result.Appointments) > 0 {
		first := result.Appointments[0]
		if svc, err := s.Dir.ServiceByID(r.Context(), first.ServiceID); err == nil {
			go s.sendBookingConfirmationEmail(log, first, svc)
		}
	}

	log.Info("flow commit: ok",
		slog.String("session_id", id),
		slog.Int("appointments", len(result.Appointments)),
	)
	transport.WriteJSON(w, http.StatusCreated, result)
}

func (s *Server) invalidateAvailability(r *http.Request, appointments []booking.Appointment) {
	if s.Cache == nil {
		return
	}
	seen := make(map[string]bool, len(appointments))
	for _, a := range appointments {
		if seen[a.Date] {
			continue
		}
		seen[a.Date] = true
		_ = s.Cache.DeletePrefix(r.Context(), "availability:"+a.Date+":")
	}
}
