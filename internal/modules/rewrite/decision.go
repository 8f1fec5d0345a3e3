package rewrite

import (
	"context"

	"go.uber.org/zap"
)

// ArticleStore is the persistence surface the decision engine writes
// through. Each method is a single atomic update per outcome.
type ArticleStore interface {
	// Publish applies the rewritten fields and flips the article to
	// published in one update.
	Publish(ctx context.Context, articleID string, update RewriteUpdate) error
	// Hold records the grade and warnings, forces the article back to
	// draft, and leaves the original content untouched.
	Hold(ctx context.Context, articleID string, grade Grade, warnings []string) error
}

// DecisionEngine gates persistence on the final validation grade. Only
// grade A publishes; everything else holds the article with its original
// content preserved.
type DecisionEngine struct {
	store ArticleStore
	log   *zap.Logger
}

func NewDecisionEngine(store ArticleStore, log *zap.Logger) *DecisionEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &DecisionEngine{store: store, log: log}
}

// Decide resolves one rewrite attempt. With no target article the engine
// never touches storage and the outcome only echoes the grade for
// preview. The apply-or-hold write is all-or-nothing; a low grade never
// applies any rewritten field.
func (e *DecisionEngine) Decide(ctx context.Context, articleID string, finalGrade Grade, parsed ParsedArticle, result ValidationResult, doubleValidated bool) (PublishOutcome, error) {
	outcome := PublishOutcome{
		ArticleID: articleID,
		Grade:     finalGrade,
		Warnings:  result.Warnings,
	}
	if articleID == "" {
		return outcome, nil
	}

	if finalGrade == GradeA {
		update := RewriteUpdate{
			Title:           parsed.Title,
			Slug:            parsed.Slug,
			Text:            parsed.BodyHTML,
			Summary:         parsed.Summary,
			Tags:            parsed.Tags,
			Keywords:        parsed.Keywords,
			Grade:           finalGrade,
			DoubleValidated: doubleValidated,
		}
		if err := e.store.Publish(ctx, articleID, update); err != nil {
			return outcome, err
		}
		e.log.Info("article published after validation",
			zap.String("article_id", articleID),
			zap.String("grade", string(finalGrade)))
		outcome.Published = true
		return outcome, nil
	}

	if err := e.store.Hold(ctx, articleID, finalGrade, result.Warnings); err != nil {
		return outcome, err
	}
	e.log.Info("article held after validation",
		zap.String("article_id", articleID),
		zap.String("grade", string(finalGrade)),
		zap.Int("warnings", len(result.Warnings)))
	outcome.Cancelled = true
	return outcome, nil
}

// HoldParseFailure records parser diagnostics against an article and
// forces it back to draft so the failure is visible to an operator.
func (e *DecisionEngine) HoldParseFailure(ctx context.Context, articleID string, reason string) error {
	if articleID == "" {
		return nil
	}
	return e.store.Hold(ctx, articleID, GradeD, []string{reason})
}
