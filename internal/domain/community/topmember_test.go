package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopMember_ReturnsHighestVotedAuthor(t *testing.T) {
	questions := []Question{
		{ID: "q1", AuthorID: "ana"},
		{ID: "q2", AuthorID: "ana"},
		{ID: "q3", AuthorID: "bruno"},
	}
	votes := []VoteCount{
		{QuestionID: "q1", Count: 30},
		{QuestionID: "q2", Count: 25},
		{QuestionID: "q3", Count: 52},
	}

	author, total, ok := TopMember(questions, votes)
	assert.True(t, ok)
	assert.Equal(t, "ana", author)
	assert.Equal(t, 55, total)
}

func TestTopMember_BelowThreshold(t *testing.T) {
	questions := []Question{{ID: "q1", AuthorID: "ana"}}
	votes := []VoteCount{{QuestionID: "q1", Count: TopMemberThreshold - 1}}

	_, _, ok := TopMember(questions, votes)
	assert.False(t, ok)
}

func TestTopMember_ExactlyAtThreshold(t *testing.T) {
	questions := []Question{{ID: "q1", AuthorID: "ana"}}
	votes := []VoteCount{{QuestionID: "q1", Count: TopMemberThreshold}}

	author, total, ok := TopMember(questions, votes)
	assert.True(t, ok)
	assert.Equal(t, "ana", author)
	assert.Equal(t, TopMemberThreshold, total)
}

func TestTopMember_NoQuestions(t *testing.T) {
	_, _, ok := TopMember(nil, nil)
	assert.False(t, ok)
}

func TestTopMember_NoVotes(t *testing.T) {
	questions := []Question{{ID: "q1", AuthorID: "ana"}}

	_, _, ok := TopMember(questions, nil)
	assert.False(t, ok)
}

func TestTopMember_TieBreaksByAscendingAuthorID(t *testing.T) {
	questions := []Question{
		{ID: "q1", AuthorID: "zeta"},
		{ID: "q2", AuthorID: "alpha"},
	}
	votes := []VoteCount{
		{QuestionID: "q1", Count: 60},
		{QuestionID: "q2", Count: 60},
	}

	author, total, ok := TopMember(questions, votes)
	assert.True(t, ok)
	assert.Equal(t, "alpha", author)
	assert.Equal(t, 60, total)
}

func TestTopMember_IgnoresVotesForUnknownQuestions(t *testing.T) {
	questions := []Question{{ID: "q1", AuthorID: "ana"}}
	votes := []VoteCount{
		{QuestionID: "q1", Count: 40},
		{QuestionID: "ghost", Count: 100},
	}

	_, _, ok := TopMember(questions, votes)
	assert.False(t, ok)
}
