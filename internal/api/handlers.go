package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// processMessageHandler handles one dialog turn (POST /process-message/). The
// request carries the visitor's message plus the entire prior state; the
// response echoes the reply and the updated state. This endpoint returns the
// bare turn shape rather than the status envelope, preserving the wire
// contract existing kiosk clients depend on.
func (s *Server) processMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.processMessageHandler: processing turn", "method", r.Method)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.processMessageHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.processMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	st := req.VisitorInfo
	if st == nil {
		st = models.NewDialogState()
	}
	if req.CurrentStep != "" {
		st.CurrentStep = req.CurrentStep
	}

	reply, err := s.engine.Step(r.Context(), st, req.Message)
	if err != nil {
		slog.Error("Server.processMessageHandler: turn failed", "error", err, "step", st.CurrentStep)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}

	slog.Debug("Server.processMessageHandler: turn processed", "next_step", st.CurrentStep)
	writeJSONResponse(w, http.StatusOK, models.TurnResponse{
		Response:    reply,
		NextStep:    st.CurrentStep,
		VisitorInfo: st,
	})
}

// visitorsHandler dispatches the visitor record CRUD routes:
// POST/GET /visitors/ and GET/PUT/DELETE /visitors/{cnic}.
func (s *Server) visitorsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.visitorsHandler: dispatching", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/visitors")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodPost:
			s.createVisitorHandler(w, r)
		case http.MethodGet:
			s.listVisitorsHandler(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	segments := strings.Split(path, "/")
	if len(segments) != 1 {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown visitor endpoint"))
		return
	}
	cnic := segments[0]

	switch r.Method {
	case http.MethodGet:
		s.getVisitorHandler(w, r, cnic)
	case http.MethodPut:
		s.updateVisitorHandler(w, r, cnic)
	case http.MethodDelete:
		s.deleteVisitorHandler(w, r, cnic)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
	}
}

// createVisitorHandler handles POST /visitors/.
func (s *Server) createVisitorHandler(w http.ResponseWriter, r *http.Request) {
	var v models.Visitor
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		slog.Warn("Server.createVisitorHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if v.EntryTime.IsZero() {
		v.EntryTime = time.Now()
	}
	if v.TotalMembers < 1 {
		v.TotalMembers = 1
	}
	if err := v.Validate(); err != nil {
		slog.Warn("Server.createVisitorHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.st.AddVisit(v); err != nil {
		slog.Error("Server.createVisitorHandler: failed to add visit", "error", err, "cnic", v.CNIC)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to store visitor"))
		return
	}
	slog.Info("Server.createVisitorHandler: visitor recorded", "cnic", v.CNIC)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Visitor recorded successfully", nil))
}

// listVisitorsHandler handles GET /visitors/.
func (s *Server) listVisitorsHandler(w http.ResponseWriter, r *http.Request) {
	visits, err := s.st.GetVisits()
	if err != nil {
		slog.Error("Server.listVisitorsHandler: failed to fetch visits", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch visitors"))
		return
	}
	slog.Debug("Server.listVisitorsHandler: visits fetched", "count", len(visits))
	writeJSONResponse(w, http.StatusOK, models.Success(visits))
}

// getVisitorHandler handles GET /visitors/{cnic}.
func (s *Server) getVisitorHandler(w http.ResponseWriter, r *http.Request, cnic string) {
	v, err := s.st.GetVisitByCNIC(cnic)
	if errors.Is(err, models.ErrVisitorNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Visitor not found"))
		return
	}
	if err != nil {
		slog.Error("Server.getVisitorHandler: failed to fetch visit", "error", err, "cnic", cnic)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch visitor"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(v))
}

// updateVisitorHandler handles PUT /visitors/{cnic}.
func (s *Server) updateVisitorHandler(w http.ResponseWriter, r *http.Request, cnic string) {
	var v models.Visitor
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		slog.Warn("Server.updateVisitorHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	v.CNIC = cnic
	if v.TotalMembers < 1 {
		v.TotalMembers = 1
	}
	err := s.st.UpdateVisit(cnic, v)
	if errors.Is(err, models.ErrVisitorNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Visitor not found"))
		return
	}
	if err != nil {
		slog.Error("Server.updateVisitorHandler: failed to update visit", "error", err, "cnic", cnic)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update visitor"))
		return
	}
	slog.Info("Server.updateVisitorHandler: visitor updated", "cnic", cnic)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Visitor updated successfully", nil))
}

// deleteVisitorHandler handles DELETE /visitors/{cnic}.
func (s *Server) deleteVisitorHandler(w http.ResponseWriter, r *http.Request, cnic string) {
	err := s.st.DeleteVisit(cnic)
	if errors.Is(err, models.ErrVisitorNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Visitor not found"))
		return
	}
	if err != nil {
		slog.Error("Server.deleteVisitorHandler: failed to delete visit", "error", err, "cnic", cnic)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete visitor"))
		return
	}
	slog.Info("Server.deleteVisitorHandler: visitor deleted", "cnic", cnic)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Visitor deleted successfully", nil))
}

// healthHandler provides a health check endpoint for monitoring and load
// balancing.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := s.st.GetVisits(); err != nil {
		slog.Warn("Health check: store unavailable", "error", err)
		healthData["status"] = "degraded"
		healthData["error"] = "Store unavailable"
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, healthData)
}
