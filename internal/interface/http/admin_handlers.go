package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// All routes require the X-Admin-Key header; see adminAuthMiddleware.
// ══════════════════════════════════════════════════════════════════════════════

type reconcileRequest struct {
	// UserID limits the run to one user. Empty reconciles everyone.
	UserID string `json:"user_id"`

	// Month and Year select the window. Zero means the current UTC month.
	Month int `json:"month"`
	Year  int `json:"year"`

	// DryRun computes drift without writing.
	DryRun bool `json:"dry_run"`
}

type reconcileUserResponse struct {
	UserID            string `json:"user_id"`
	PreviousXPMonthly int    `json:"previous_xp_mensal"`
	NewXPMonthly      int    `json:"new_xp_mensal"`
	CountedEvents     int    `json:"counted_events"`
	Drifted           bool   `json:"drifted"`
	Applied           bool   `json:"applied"`
}

type reconcileAllResponse struct {
	TotalUsers   int                     `json:"total_users"`
	DriftedUsers int                     `json:"drifted_users"`
	AppliedUsers int                     `json:"applied_users"`
	Drifted      []reconcileUserResponse `json:"drifted"`
	Failed       map[string]string       `json:"failed,omitempty"`
}

// handleReconcile handles POST /api/v1/admin/reconcile.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	month := time.Month(req.Month)
	year := req.Year
	if req.Month == 0 && req.Year == 0 {
		year, month = timeutil.CurrentMonth(time.Now())
	}

	if req.UserID != "" {
		result, err := s.deps.Reconcile.Handle(r.Context(), command.ReconcileMonthlyXPCommand{
			UserID: req.UserID,
			Month:  month,
			Year:   year,
			DryRun: req.DryRun,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReconcileUserResponse(result))
		return
	}

	result, err := s.deps.Reconcile.HandleAll(r.Context(), month, year, req.DryRun)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := reconcileAllResponse{
		TotalUsers:   result.TotalUsers,
		DriftedUsers: result.DriftedUsers,
		AppliedUsers: result.AppliedUsers,
		Drifted:      make([]reconcileUserResponse, 0, len(result.Results)),
	}
	for _, ur := range result.Results {
		if ur.Drifted() {
			resp.Drifted = append(resp.Drifted, toReconcileUserResponse(ur))
		}
	}
	if len(result.Errors) > 0 {
		resp.Failed = make(map[string]string, len(result.Errors))
		for userID, userErr := range result.Errors {
			resp.Failed[userID] = userErr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toReconcileUserResponse(r *command.ReconcileMonthlyXPResult) reconcileUserResponse {
	return reconcileUserResponse{
		UserID:            r.UserID,
		PreviousXPMonthly: r.PreviousXPMonthly,
		NewXPMonthly:      r.NewXPMonthly,
		CountedEvents:     len(r.CountedEvents),
		Drifted:           r.Drifted(),
		Applied:           r.Applied,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// sync endpoints
// ──────────────────────────────────────────────────────────────────────────────

type syncLevelResponse struct {
	CheckedUsers int                `json:"checked_users"`
	Fixes        []command.LevelFix `json:"fixes"`
	Failed       map[string]string  `json:"failed,omitempty"`
}

// handleSyncLevel handles POST /api/v1/admin/sync-level.
func (s *Server) handleSyncLevel(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.SyncLevels.HandleAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := syncLevelResponse{
		CheckedUsers: result.CheckedUsers,
		Fixes:        result.Fixes,
	}
	if len(result.Errors) > 0 {
		resp.Failed = make(map[string]string, len(result.Errors))
		for userID, userErr := range result.Errors {
			resp.Failed[userID] = userErr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type syncCeilingResponse struct {
	CheckedUsers int                  `json:"checked_users"`
	Fixes        []command.CeilingFix `json:"fixes"`
	Failed       map[string]string    `json:"failed,omitempty"`
}

// handleSyncCeiling handles POST /api/v1/admin/sync-ceiling.
func (s *Server) handleSyncCeiling(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.SyncCeilings.HandleAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := syncCeilingResponse{
		CheckedUsers: result.CheckedUsers,
		Fixes:        result.Fixes,
	}
	if len(result.Errors) > 0 {
		resp.Failed = make(map[string]string, len(result.Errors))
		for userID, userErr := range result.Errors {
			resp.Failed[userID] = userErr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
