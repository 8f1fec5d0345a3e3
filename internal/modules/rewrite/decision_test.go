package rewrite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	published map[string]RewriteUpdate
	held      map[string]Grade
	warnings  map[string][]string
	publishErr error
	holdErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		published: map[string]RewriteUpdate{},
		held:      map[string]Grade{},
		warnings:  map[string][]string{},
	}
}

func (s *fakeStore) Publish(_ context.Context, id string, update RewriteUpdate) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published[id] = update
	return nil
}

func (s *fakeStore) Hold(_ context.Context, id string, grade Grade, warnings []string) error {
	if s.holdErr != nil {
		return s.holdErr
	}
	s.held[id] = grade
	s.warnings[id] = warnings
	return nil
}

var testParsed = ParsedArticle{
	Title:    "헤드라인",
	Slug:     "headline",
	BodyHTML: "<p>본문</p>",
	Summary:  "요약",
	Tags:     []string{"지역"},
}

func TestDecideGradeAPublishes(t *testing.T) {
	store := newFakeStore()
	engine := NewDecisionEngine(store, nil)

	outcome, err := engine.Decide(context.Background(), "art-1", GradeA, testParsed,
		ValidationResult{Grade: GradeA, NumbersOK: true, QuotesOK: true}, true)
	require.NoError(t, err)

	assert.True(t, outcome.Published)
	assert.False(t, outcome.Cancelled)
	assert.Equal(t, "art-1", outcome.ArticleID)

	update, ok := store.published["art-1"]
	require.True(t, ok)
	assert.Equal(t, "헤드라인", update.Title)
	assert.Equal(t, GradeA, update.Grade)
	assert.True(t, update.DoubleValidated)
	assert.Empty(t, store.held)
}

func TestDecideLowGradeHoldsWithoutApplyingContent(t *testing.T) {
	store := newFakeStore()
	engine := NewDecisionEngine(store, nil)

	warnings := []string{`number "5000" not found in source`}
	outcome, err := engine.Decide(context.Background(), "art-2", GradeB, testParsed,
		ValidationResult{Grade: GradeB, Warnings: warnings}, false)
	require.NoError(t, err)

	assert.False(t, outcome.Published)
	assert.True(t, outcome.Cancelled)
	assert.Equal(t, GradeB, outcome.Grade)
	assert.Equal(t, warnings, outcome.Warnings)

	// All-or-nothing: no rewritten field reaches storage on a hold.
	assert.Empty(t, store.published)
	assert.Equal(t, GradeB, store.held["art-2"])
	assert.Equal(t, warnings, store.warnings["art-2"])
}

func TestDecideGradesCAndDHold(t *testing.T) {
	for _, grade := range []Grade{GradeC, GradeD} {
		store := newFakeStore()
		engine := NewDecisionEngine(store, nil)

		outcome, err := engine.Decide(context.Background(), "art-3", grade, testParsed,
			ValidationResult{Grade: grade}, false)
		require.NoError(t, err)
		assert.True(t, outcome.Cancelled)
		assert.Empty(t, store.published)
	}
}

func TestDecidePreviewNeverTouchesStorage(t *testing.T) {
	store := newFakeStore()
	engine := NewDecisionEngine(store, nil)

	outcome, err := engine.Decide(context.Background(), "", GradeA, testParsed,
		ValidationResult{Grade: GradeA}, false)
	require.NoError(t, err)

	assert.False(t, outcome.Published)
	assert.False(t, outcome.Cancelled)
	assert.Empty(t, store.published)
	assert.Empty(t, store.held)
}

func TestDecidePublishFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.publishErr = errors.New("db down")
	engine := NewDecisionEngine(store, nil)

	_, err := engine.Decide(context.Background(), "art-4", GradeA, testParsed,
		ValidationResult{Grade: GradeA}, false)
	require.Error(t, err)
}

func TestHoldParseFailure(t *testing.T) {
	store := newFakeStore()
	engine := NewDecisionEngine(store, nil)

	require.NoError(t, engine.HoldParseFailure(context.Background(), "art-5", "no JSON object found"))
	assert.Equal(t, GradeD, store.held["art-5"])
	assert.Equal(t, []string{"no JSON object found"}, store.warnings["art-5"])

	// No article id means nothing to hold.
	require.NoError(t, engine.HoldParseFailure(context.Background(), "", "whatever"))
	assert.Len(t, store.held, 1)
}
