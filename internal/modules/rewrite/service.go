package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/regionpress/core/internal/config"
)

// SettingsProvider exposes the current editorial AI configuration.
type SettingsProvider interface {
	AI() appcfg.AIConfig
}

// ReporterLookup resolves a reporter's personal AI credentials. ok is
// false when the reporter has not enabled personal settings.
type ReporterLookup interface {
	ReporterAI(ctx context.Context, reporterID string) (provider, credential string, ok bool, err error)
}

// usageGuard is the quota and accounting surface the pipeline calls.
type usageGuard interface {
	CanProceed(ctx context.Context, region string, textLength int, limits GuardLimits) GuardDecision
	LogUsage(ctx context.Context, entry UsageEntry)
}

// GuardRejectedError carries the quota decision that blocked a request.
type GuardRejectedError struct {
	Decision GuardDecision
}

func (e *GuardRejectedError) Error() string { return e.Decision.Reason }

// PersistError marks a failure of the final article update after the
// model call and validation already succeeded.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist outcome: %v", e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

// Result is what one rewrite attempt produced. Skipped results return
// the source text unchanged.
type Result struct {
	Skipped    bool              `json:"skipped,omitempty"`
	Note       string            `json:"note,omitempty"`
	Text       string            `json:"text"`
	Provider   string            `json:"provider,omitempty"`
	Parsed     *ParsedArticle    `json:"parsed,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Outcome    *PublishOutcome   `json:"outcome,omitempty"`
}

// callTarget is the resolved provider/credential pair for one request.
// An empty credential means "rotate through the shared key pool".
type callTarget struct {
	provider   string
	credential string
	label      string
}

// Service runs the rewrite pipeline: guard, prompt composition, model
// call with rotation, parsing, validation and the publish decision.
type Service struct {
	settings  SettingsProvider
	reporters ReporterLookup
	guard     usageGuard
	engine    *DecisionEngine
	invoker   Invoker
	backoff   Backoff
	sleep     func(time.Duration)
	log       *zap.Logger

	usageWG sync.WaitGroup

	mu      sync.Mutex
	pool    *KeyPool
	poolSig string
}

func NewService(settings SettingsProvider, reporters ReporterLookup, guard usageGuard, engine *DecisionEngine, invoker Invoker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		settings:  settings,
		reporters: reporters,
		guard:     guard,
		engine:    engine,
		invoker:   invoker,
		backoff:   DefaultBackoff(),
		sleep:     time.Sleep,
		log:       log,
	}
}

// Process handles one rewrite request end to end. Steps run strictly in
// order and each is gated on the previous one succeeding.
func (s *Service) Process(ctx context.Context, req RewriteRequest) (*Result, error) {
	source := strings.TrimSpace(req.SourceText)
	if source == "" {
		return nil, errors.New("source text is required")
	}

	cfg := s.settings.AI()
	testMode := strings.TrimSpace(req.Provider) != "" && strings.TrimSpace(req.Credential) != ""

	target, note := s.resolveTarget(ctx, req, cfg, testMode)
	if target == nil {
		return &Result{Skipped: true, Note: note, Text: req.SourceText}, nil
	}

	if !testMode {
		decision := s.guard.CanProceed(ctx, req.Region, len(source), GuardLimits{
			MaxInputLength:     cfg.MaxInputLength,
			DailyRequestLimit:  cfg.DailyRequestLimit,
			MonthlyTokenBudget: cfg.MonthlyTokenBudget,
		})
		if !decision.Allowed {
			return nil, &GuardRejectedError{Decision: decision}
		}
	}

	base := cfg.RewriteSystemPrompt
	if strings.TrimSpace(req.PromptOverride) != "" {
		base = req.PromptOverride
	}
	systemPrompt := ComposePrompt(base, req.Style, req.Structured)
	userPrompt := BuildUserPrompt(source)

	res, err := s.invoke(ctx, cfg, target, systemPrompt, userPrompt)
	s.logUsage(ctx, req, target, res, err)
	if err != nil {
		return nil, err
	}

	if !req.Structured {
		return &Result{Text: res.Text, Provider: target.provider}, nil
	}

	parsed, err := ParseArticle(res.Text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && req.ArticleID != "" {
			if holdErr := s.engine.HoldParseFailure(ctx, req.ArticleID, pe.Reason); holdErr != nil {
				s.log.Warn("failed to hold article after parse error",
					zap.String("article_id", req.ArticleID), zap.Error(holdErr))
			}
		}
		return nil, err
	}

	validation := Validate(source, parsed)
	finalGrade := validation.Grade
	doubleValidated := false

	if cfg.DoubleValidation {
		finalGrade, doubleValidated = s.secondPass(ctx, req, cfg, target, systemPrompt, userPrompt, source, &validation, finalGrade)
	}

	final := validation
	final.Grade = finalGrade

	outcome, err := s.engine.Decide(ctx, req.ArticleID, finalGrade, parsed, final, doubleValidated)
	if err != nil {
		return nil, &PersistError{Err: err}
	}

	return &Result{
		Text:       res.Text,
		Provider:   target.provider,
		Parsed:     &parsed,
		Validation: &final,
		Outcome:    &outcome,
	}, nil
}

// secondPass re-runs the model and validation after a fixed pause. Both
// passes must agree before the double-validated marker is set; the worse
// grade governs when they disagree. A pass that cannot complete demotes
// grade A so an unconfirmed rewrite never auto-publishes.
func (s *Service) secondPass(ctx context.Context, req RewriteRequest, cfg appcfg.AIConfig, target *callTarget, systemPrompt, userPrompt, source string, validation *ValidationResult, grade Grade) (Grade, bool) {
	s.sleep(s.backoff.SecondPass)

	res, err := s.invoke(ctx, cfg, target, systemPrompt, userPrompt)
	s.logUsage(ctx, req, target, res, err)
	if err != nil {
		s.log.Warn("second validation pass failed", zap.Error(err))
		validation.Warnings = append(validation.Warnings, "second validation pass could not complete")
		return WorseGrade(grade, GradeB), false
	}

	parsed, err := ParseArticle(res.Text)
	if err != nil {
		validation.Warnings = append(validation.Warnings, "second validation pass produced unparseable output")
		return WorseGrade(grade, GradeB), false
	}

	second := Validate(source, parsed)
	validation.Warnings = append(validation.Warnings, second.Warnings...)
	validation.NumbersOK = validation.NumbersOK && second.NumbersOK
	validation.QuotesOK = validation.QuotesOK && second.QuotesOK
	return WorseGrade(grade, second.Grade), true
}

func (s *Service) invoke(ctx context.Context, cfg appcfg.AIConfig, target *callTarget, systemPrompt, userPrompt string) (invokeResult, error) {
	c := &caller{invoker: s.invoker, backoff: s.backoff, sleep: s.sleep}
	if target.credential != "" {
		return c.callDirect(ctx, target.provider, target.credential, target.label, systemPrompt, userPrompt)
	}

	pool, err := s.ensurePool(cfg.KeyPool)
	if err != nil {
		return invokeResult{}, err
	}
	c.pool = pool
	return c.callWithRotation(ctx, target.provider, systemPrompt, userPrompt)
}

// logUsage records the call off the request path. The append must never
// delay the rewrite response, so it runs in its own goroutine on a
// context detached from the request's cancellation.
func (s *Service) logUsage(ctx context.Context, req RewriteRequest, target *callTarget, res invokeResult, callErr error) {
	model, _ := ModelFor(target.provider)
	label := res.KeyLabel
	if label == "" {
		label = target.label
	}
	entry := UsageEntry{
		Region:    req.Region,
		Provider:  target.provider,
		Model:     model,
		KeyLabel:  label,
		ArticleID: req.ArticleID,
		Usage:     res.Usage,
		Succeeded: callErr == nil,
		Err:       callErr,
	}

	detached := context.WithoutCancel(ctx)
	s.usageWG.Add(1)
	go func() {
		defer s.usageWG.Done()
		s.guard.LogUsage(detached, entry)
	}()
}

// resolveTarget picks who pays for the call: an explicit test-mode pair,
// the reporter's personal settings, or the global configuration. A nil
// target with a note means rewrite is skipped, never an error.
func (s *Service) resolveTarget(ctx context.Context, req RewriteRequest, cfg appcfg.AIConfig, testMode bool) (*callTarget, string) {
	if testMode {
		return &callTarget{
			provider:   normalizeProvider(req.Provider),
			credential: req.Credential,
			label:      "test",
		}, ""
	}

	if req.ReporterID != "" && s.reporters != nil {
		provider, credential, ok, err := s.reporters.ReporterAI(ctx, req.ReporterID)
		if err != nil {
			s.log.Warn("reporter credential lookup failed",
				zap.String("reporter_id", req.ReporterID), zap.Error(err))
		} else if ok {
			return &callTarget{
				provider:   normalizeProvider(provider),
				credential: credential,
				label:      "reporter:" + req.ReporterID,
			}, ""
		}
	}

	if !cfg.EnableRewrite {
		return nil, "rewrite is disabled in settings"
	}

	provider := pickProvider(cfg)
	if provider == nil {
		return nil, "no enabled provider configured"
	}

	tag := normalizeProvider(provider.Type)
	if _, ok := ModelFor(tag); !ok {
		return nil, fmt.Sprintf("provider type %q is not supported", provider.Type)
	}

	if len(cfg.KeyPool) > 0 {
		return &callTarget{provider: tag}, ""
	}
	if strings.TrimSpace(provider.APIKey) != "" {
		return &callTarget{
			provider:   tag,
			credential: provider.APIKey,
			label:      "provider:" + provider.ID,
		}, ""
	}
	return nil, "no credential configured"
}

func pickProvider(cfg appcfg.AIConfig) *appcfg.AIProvider {
	if cfg.RewriteModel != nil && cfg.RewriteModel.ProviderID != "" {
		for i := range cfg.Providers {
			p := &cfg.Providers[i]
			if p.ID == cfg.RewriteModel.ProviderID && p.Enabled {
				return p
			}
		}
	}
	for i := range cfg.Providers {
		if cfg.Providers[i].Enabled {
			return &cfg.Providers[i]
		}
	}
	return nil
}

// ensurePool rebuilds the shared rotation pool only when the configured
// keys change, so the cursor survives across requests.
func (s *Service) ensurePool(keys []appcfg.AIPoolKey) (*KeyPool, error) {
	var sig strings.Builder
	for _, k := range keys {
		sig.WriteString(k.Secret)
		sig.WriteByte(0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil && s.poolSig == sig.String() {
		return s.pool, nil
	}

	creds := make([]Credential, 0, len(keys))
	for _, k := range keys {
		creds = append(creds, Credential{Secret: k.Secret, Label: k.Label})
	}
	pool, err := NewKeyPool(creds)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	s.poolSig = sig.String()
	return pool, nil
}
