// Package community contains the community Q&A slice this core needs: the
// vote aggregation that derives the "top member" badge. The badge is never
// stored; every read recomputes it from raw counts, so there is no cache to
// invalidate and no stored value to drift.
package community

import (
	"context"
	"sort"
)

// TopMemberThreshold is the minimum aggregated vote total an author needs
// before the badge is awarded at all.
const TopMemberThreshold = 50

// Question is a community question, reduced to what vote grouping needs.
type Question struct {
	ID       string
	AuthorID string
}

// VoteCount is the number of votes on a single question.
type VoteCount struct {
	QuestionID string
	Count      int
}

// QuestionRepository is the read port for the community store.
type QuestionRepository interface {
	// ListQuestions returns all questions.
	ListQuestions(ctx context.Context) ([]Question, error)

	// CountVotes returns per-question vote totals.
	CountVotes(ctx context.Context) ([]VoteCount, error)
}

// TopMember aggregates votes by question author and returns the author with
// the highest total, but only when that total reaches the threshold.
// Ties break by ascending author id. Zero questions or zero votes return
// ok == false.
func TopMember(questions []Question, votes []VoteCount) (authorID string, total int, ok bool) {
	if len(questions) == 0 {
		return "", 0, false
	}

	authorByQuestion := make(map[string]string, len(questions))
	for _, q := range questions {
		authorByQuestion[q.ID] = q.AuthorID
	}

	totals := make(map[string]int)
	for _, v := range votes {
		author, known := authorByQuestion[v.QuestionID]
		if !known || author == "" {
			continue
		}
		totals[author] += v.Count
	}

	// Deterministic iteration: sort authors so ties never depend on map
	// order.
	authors := make([]string, 0, len(totals))
	for author := range totals {
		authors = append(authors, author)
	}
	sort.Strings(authors)

	best, bestTotal := "", 0
	for _, author := range authors {
		if totals[author] > bestTotal {
			best, bestTotal = author, totals[author]
		}
	}

	if bestTotal < TopMemberThreshold {
		return "", 0, false
	}
	return best, bestTotal, true
}
