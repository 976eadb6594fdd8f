package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"salonbook/internal/directory"
	"salonbook/internal/transport"
)

func (s *Server) GetStaff(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	cacheKey := "directory:staff"
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), cacheKey); err == nil && ok {
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	staff, err := s.Dir.ListStaff(r.Context())
	if err != nil {
		log.Error("staff list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	response := map[string]interface{}{"staff": staff}
	if payload, err := encodeJSON(response); err == nil && s.Cache != nil {
		_ = s.Cache.Set(r.Context(), cacheKey, payload, time.Duration(s.Cfg.CacheTTLSeconds)*time.Second)
	}

	log.Info("staff list: ok", slog.Int("count", len(staff)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (s *Server) GetServices(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	cacheKey := "directory:services"
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), cacheKey); err == nil && ok {
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	services, err := s.Dir.ListServices(r.Context())
	if err != nil {
		log.Error("services list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	response := map[string]interface{}{"services": services}
	if payload, err := encodeJSON(response); err == nil && s.Cache != nil {
		_ = s.Cache.Set(r.Context(), cacheKey, payload, time.Duration(s.Cfg.CacheTTLSeconds)*time.Second)
	}

	log.Info("services list: ok", slog.Int("count", len(services)))
	transport.WriteJSON(w, http.StatusOK, response)
}

type AdminStaffRequest struct {
	Name         string                          `json:"name" validate:"required"`
	Status       string                          `json:"status" validate:"required,oneof=active offline"`
	WorkingHours map[string]directory.WorkingDay `json:"workingHours" validate:"required"`
}

func (s *Server) AdminUpsertStaff(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("admin staff upsert: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin staff upsert: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	for key, day := range req.WorkingHours {
		if !validWeekdayKey(key) {
			transport.WriteError(w, http.StatusBadRequest, "unknown weekday key", map[string]string{key: "weekday"})
			return
		}
		if day.Active && day.StartTime >= day.EndTime {
			transport.WriteError(w, http.StatusBadRequest, "invalid working window", map[string]string{key: "window"})
			return
		}
	}

	staff := directory.Staff{
		ID:           primitive.NewObjectID().Hex(),
		Name:         req.Name,
		Status:       req.Status,
		WorkingHours: req.WorkingHours,
		CreatedAt:    time.Now().In(s.Cfg.Timezone),
	}

	if err := s.Dir.UpsertStaff(r.Context(), staff); err != nil {
		log.Error("admin staff upsert: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if s.Cache != nil {
		_ = s.Cache.Delete(r.Context(), "directory:staff")
	}

	log.Info("admin staff upsert: ok", slog.String("staff_id", staff.ID))
	transport.WriteJSON(w, http.StatusCreated, staff)
}

type AdminServiceRequest struct {
	Name                string   `json:"name" validate:"required"`
	Duration            int      `json:"duration" validate:"required,gte=15,lte=240,minutes15"`
	Price               int      `json:"price" validate:"gte=0"`
	AvailableDays       []string `json:"availableDays"`
	EarliestBookingTime string   `json:"earliestBookingTime" validate:"omitempty,clock"`
	LatestBookingTime   string   `json:"latestBookingTime" validate:"omitempty,clock"`
}

func (s *Server) AdminUpsertService(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("admin services upsert: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin services upsert: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	for _, key := range req.AvailableDays {
		if !validWeekdayKey(key) {
			transport.WriteError(w, http.StatusBadRequest, "unknown weekday key", map[string]string{key: "weekday"})
			return
		}
	}

	service := directory.Service{
		ID:                  primitive.NewObjectID().Hex(),
		Name:                req.Name,
		Duration:            req.Duration,
		Price:               req.Price,
		AvailableDays:       req.AvailableDays,
		EarliestBookingTime: req.EarliestBookingTime,
		LatestBookingTime:   req.LatestBookingTime,
		CreatedAt:           time.Now().In(s.Cfg.Timezone),
	}

	if err := s.Dir.UpsertService(r.Context(), service); err != nil {
		log.Error("admin services upsert: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if s.Cache != nil {
		_ = s.Cache.Delete(r.Context(), "directory:services")
	}

	log.Info("admin services upsert: ok", slog.String("service_id", service.ID))
	transport.WriteJSON(w, http.StatusCreated, service)
}

func validWeekdayKey(key string) bool {
	switch key {
	case "sun", "mon", "tue", "wed", "thu", "fri", "sat":
		return true
	}
	return false
}
