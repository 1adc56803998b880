package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/internal/application/query"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealthz handles GET /healthz (liveness).
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": s.Uptime().String(),
	})
}

// handleReadyz handles GET /readyz (readiness).
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ══════════════════════════════════════════════════════════════════════════════
// XP HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type awardXPRequest struct {
	UserID      string `json:"user_id"`
	Source      string `json:"source"`
	SourceID    string `json:"source_id"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

type awardXPResponse struct {
	EventID        string `json:"event_id"`
	UserID         string `json:"user_id"`
	XP             int    `json:"xp"`
	XPMonthly      int    `json:"xp_mensal"`
	Level          int    `json:"level"`
	PartialFailure bool   `json:"partial_failure,omitempty"`
}

// handleAwardXP handles POST /api/v1/xp/awards.
func (s *Server) handleAwardXP(w http.ResponseWriter, r *http.Request) {
	var req awardXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	cmd := command.AwardXPCommand{
		UserID:      req.UserID,
		Source:      xp.Source(req.Source),
		SourceID:    req.SourceID,
		Amount:      req.Amount,
		Description: req.Description,
	}

	result, err := s.deps.AwardXP.Handle(r.Context(), cmd)
	if err != nil {
		// A partial failure still carries the durable ledger event; the
		// 502 body tells the caller what was written.
		if result != nil && result.PartialFailure {
			writeJSON(w, http.StatusBadGateway, awardXPResponse{
				EventID:        result.Event.ID,
				UserID:         req.UserID,
				PartialFailure: true,
			})
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, awardXPResponse{
		EventID:   result.Event.ID,
		UserID:    req.UserID,
		XP:        result.XP,
		XPMonthly: result.XPMonthly,
		Level:     int(result.Level),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING AND COMMUNITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type rankingResponse struct {
	Type      string          `json:"type"`
	Entries   []ranking.Entry `json:"entries"`
	FromCache bool            `json:"from_cache"`
	CachedAt  *time.Time      `json:"cached_at,omitempty"`
}

// handleGetRanking handles GET /api/v1/ranking?type=monthly|overall&limit=N.
func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	q := query.GetRankingQuery{
		Type:  ranking.Type(r.URL.Query().Get("type")),
		Limit: queryParamInt(r, "limit", 0),
	}
	if q.Type == "" {
		q.Type = ranking.TypeMonthly
	}

	result, err := s.deps.GetRanking.Handle(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := rankingResponse{
		Type:      string(result.Type),
		Entries:   result.Entries,
		FromCache: result.FromCache,
	}
	if !result.CachedAt.IsZero() {
		cachedAt := result.CachedAt
		resp.CachedAt = &cachedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

type topMemberResponse struct {
	HasTopMember bool   `json:"has_top_member"`
	UserID       string `json:"user_id,omitempty"`
	TotalVotes   int    `json:"total_votes,omitempty"`
	Threshold    int    `json:"threshold"`
}

// handleGetTopMember handles GET /api/v1/members/top.
func (s *Server) handleGetTopMember(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetTopMember.Handle(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, topMemberResponse{
		HasTopMember: result.HasTopMember,
		UserID:       result.UserID,
		TotalVotes:   result.TotalVotes,
		Threshold:    result.Threshold,
	})
}

type profileEventResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	SourceID    string    `json:"source_id,omitempty"`
	Amount      int       `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type profileResponse struct {
	UserID       string                 `json:"user_id"`
	Name         string                 `json:"name"`
	Avatar       string                 `json:"avatar,omitempty"`
	XP           int                    `json:"xp"`
	XPMonthly    int                    `json:"xp_mensal"`
	Level        int                    `json:"level"`
	NextLevelAt  int                    `json:"next_level_at,omitempty"`
	RecentEvents []profileEventResponse `json:"recent_events"`
}

// handleGetProfile handles GET /api/v1/users/{id}/profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	result, err := s.deps.GetProfile.Handle(r.Context(), query.GetProfileQuery{
		UserID:      userID,
		RecentLimit: queryParamInt(r, "recent", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	events := make([]profileEventResponse, 0, len(result.RecentEvents))
	for _, e := range result.RecentEvents {
		events = append(events, profileEventResponse{
			ID:          e.ID,
			Source:      string(e.Source),
			SourceID:    e.SourceID,
			Amount:      e.Amount,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID:       result.UserID,
		Name:         result.Name,
		Avatar:       result.Avatar,
		XP:           result.XP,
		XPMonthly:    result.XPMonthly,
		Level:        int(result.Level),
		NextLevelAt:  result.NextLevelAt,
		RecentEvents: events,
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// helpers
// ──────────────────────────────────────────────────────────────────────────────

func queryParamInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
