package query

import (
	"context"
	"fmt"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/community"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TOP MEMBER QUERY
// On-demand badge recomputation from raw vote counts. Nothing is persisted:
// every call replays the counts, trading cost for the impossibility of
// cache-invalidation bugs.
// ══════════════════════════════════════════════════════════════════════════════

// GetTopMemberResult is the badge outcome.
type GetTopMemberResult struct {
	// HasTopMember is false when no author reaches the vote threshold.
	HasTopMember bool

	// UserID is the top member when HasTopMember is true.
	UserID string

	// TotalVotes is the winning aggregated vote count.
	TotalVotes int

	// Threshold echoes the qualifying bound for display surfaces.
	Threshold int
}

// GetTopMemberHandler computes the top-member badge.
type GetTopMemberHandler struct {
	questions community.QuestionRepository
}

// NewGetTopMemberHandler creates a new GetTopMemberHandler.
func NewGetTopMemberHandler(questions community.QuestionRepository) *GetTopMemberHandler {
	return &GetTopMemberHandler{questions: questions}
}

// Handle loads questions and vote counts and derives the badge. Zero
// questions is a normal empty result, not an error.
func (h *GetTopMemberHandler) Handle(ctx context.Context) (*GetTopMemberResult, error) {
	questions, err := h.questions.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_top_member: failed to list questions: %w", err)
	}

	votes, err := h.questions.CountVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_top_member: failed to count votes: %w", err)
	}

	userID, total, ok := community.TopMember(questions, votes)
	return &GetTopMemberResult{
		HasTopMember: ok,
		UserID:       userID,
		TotalVotes:   total,
		Threshold:    community.TopMemberThreshold,
	}, nil
}
