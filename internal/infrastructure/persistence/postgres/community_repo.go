// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"
	"fmt"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/community"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMMUNITY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CommunityRepository implements community.QuestionRepository on the
// questions and question_votes tables.
type CommunityRepository struct {
	conn *Connection
}

// NewCommunityRepository creates a new CommunityRepository.
func NewCommunityRepository(conn *Connection) *CommunityRepository {
	return &CommunityRepository{conn: conn}
}

// ListQuestions returns all questions, reduced to id and author.
func (r *CommunityRepository) ListQuestions(ctx context.Context) ([]community.Question, error) {
	rows, err := r.conn.Pool().Query(ctx, `
		SELECT id, author_id FROM questions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]community.Question, 0)
	for rows.Next() {
		var q community.Question
		if err := rows.Scan(&q.ID, &q.AuthorID); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return questions, nil
}

// CountVotes returns per-question vote totals. Questions with no votes are
// omitted; the badge calculation treats absence as zero.
func (r *CommunityRepository) CountVotes(ctx context.Context) ([]community.VoteCount, error) {
	rows, err := r.conn.Pool().Query(ctx, `
		SELECT question_id, COUNT(*) AS votes
		FROM question_votes
		GROUP BY question_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := make([]community.VoteCount, 0)
	for rows.Next() {
		var vc community.VoteCount
		if err := rows.Scan(&vc.QuestionID, &vc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts = append(counts, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vote counts: %w", err)
	}
	return counts, nil
}
