package rewrite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "github.com/regionpress/core/internal/config"
)

type fakeSettings struct{ cfg appcfg.AIConfig }

func (f *fakeSettings) AI() appcfg.AIConfig { return f.cfg }

type fakeReporters struct {
	provider   string
	credential string
	ok         bool
	err        error
}

func (f *fakeReporters) ReporterAI(context.Context, string) (string, string, bool, error) {
	return f.provider, f.credential, f.ok, f.err
}

// fakeGuard allows everything and records usage entries. A non-nil
// release channel holds LogUsage until the test closes it.
type fakeGuard struct {
	entries []UsageEntry
	release chan struct{}
}

func (g *fakeGuard) CanProceed(context.Context, string, int, GuardLimits) GuardDecision {
	return GuardDecision{Allowed: true}
}

func (g *fakeGuard) LogUsage(_ context.Context, entry UsageEntry) {
	if g.release != nil {
		<-g.release
	}
	g.entries = append(g.entries, entry)
}

const koreanSource = "나주시는 올해 대파 생산량이 1200톤을 기록했다"

const goodRewriteJSON = `{
	"title": "나주 대파 생산량 1200톤",
	"slug": "naju-scallion-1200",
	"summary": "나주시 대파 생산량이 1200톤을 기록했다.",
	"body_html": "<p>나주시는 올해 대파 생산량이 1200톤을 기록했다.</p>",
	"keywords": ["나주"],
	"tags": ["농업"],
	"numbers": ["1200"],
	"quotes": []
}`

const driftedRewriteJSON = `{
	"title": "나주 대파 생산량 5000톤",
	"slug": "naju-scallion-5000",
	"summary": "생산량 요약",
	"body_html": "<p>나주시는 올해 대파 생산량이 5000톤을 기록했다.</p>",
	"numbers": ["5000"],
	"quotes": []
}`

func enabledConfig() appcfg.AIConfig {
	return appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "p1", Type: "openai", Enabled: true},
		},
		KeyPool: []appcfg.AIPoolKey{
			{Secret: "pool-key-1", Label: "pool-1"},
			{Secret: "pool-key-2", Label: "pool-2"},
		},
		EnableRewrite:  true,
		DefaultStyle:   "news",
		MaxInputLength: 20000,
	}
}

func newTestService(cfg appcfg.AIConfig, inv Invoker, store ArticleStore) (*Service, *[]time.Duration) {
	engine := NewDecisionEngine(store, nil)
	svc := NewService(&fakeSettings{cfg: cfg}, &fakeReporters{}, NewGuard(nil, nil, nil), engine, inv, nil)
	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }
	return svc, &slept
}

func TestProcessSkipsWhenRewriteDisabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.EnableRewrite = false
	svc, _ := newTestService(cfg, &fakeInvoker{}, newFakeStore())

	result, err := svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, koreanSource, result.Text)
	assert.NotEmpty(t, result.Note)
}

func TestProcessSkipsWithoutCredential(t *testing.T) {
	cfg := enabledConfig()
	cfg.KeyPool = nil
	svc, _ := newTestService(cfg, &fakeInvoker{}, newFakeStore())

	result, err := svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, koreanSource, result.Text)
}

func TestProcessGuardRejectsBeforeModelCall(t *testing.T) {
	cfg := enabledConfig()
	cfg.MaxInputLength = 10
	inv := &fakeInvoker{}
	svc, _ := newTestService(cfg, inv, newFakeStore())

	_, err := svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource})
	require.Error(t, err)

	var guardErr *GuardRejectedError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, GuardCodeInputTooLong, guardErr.Decision.Code)
	assert.Empty(t, inv.calls, "guard rejection must happen before any model call")
}

func TestProcessTestModeBypassesGuard(t *testing.T) {
	cfg := enabledConfig()
	cfg.MaxInputLength = 10
	inv := &fakeInvoker{responses: []fakeResponse{{text: "rewritten text"}}}
	svc, _ := newTestService(cfg, inv, newFakeStore())

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Provider:   "openai",
		Credential: "my-test-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "rewritten text", result.Text)
	assert.Equal(t, []string{"my-test-key"}, inv.calls)
}

func TestProcessUsesKeyPoolRotation(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{
		{text: "first"},
		{text: "second"},
	}}
	svc, _ := newTestService(enabledConfig(), inv, newFakeStore())

	_, err := svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource})
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource})
	require.NoError(t, err)

	// The cursor survives across requests.
	assert.Equal(t, []string{"pool-key-1", "pool-key-2"}, inv.calls)
}

func TestProcessUsageLoggingDoesNotBlockResponse(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: "ok", usage: Usage{InputTokens: 3, OutputTokens: 5}}}}
	guard := &fakeGuard{release: make(chan struct{})}
	svc, _ := newTestService(enabledConfig(), inv, newFakeStore())
	svc.guard = guard

	result, err := svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource, Region: "naju"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Empty(t, guard.entries, "the response must not wait for the usage append")

	close(guard.release)
	svc.usageWG.Wait()
	require.Len(t, guard.entries, 1)
	entry := guard.entries[0]
	assert.Equal(t, "naju", entry.Region)
	assert.Equal(t, "openai", entry.Provider)
	assert.True(t, entry.Succeeded)
	assert.Equal(t, 3, entry.Usage.InputTokens)
	assert.Equal(t, 5, entry.Usage.OutputTokens)
}

func TestProcessReporterCredentialPreferred(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: "ok"}}}
	store := newFakeStore()
	svc, _ := newTestService(enabledConfig(), inv, store)
	svc.reporters = &fakeReporters{provider: "anthropic", credential: "reporter-key", ok: true}

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		ReporterID: "rep-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"reporter-key"}, inv.calls)
	assert.Equal(t, "anthropic", result.Provider)
}

func TestProcessStructuredGradeAPublishes(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: goodRewriteJSON}}}
	store := newFakeStore()
	svc, _ := newTestService(enabledConfig(), inv, store)

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
		ArticleID:  "art-1",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Outcome)
	assert.True(t, result.Outcome.Published)
	assert.Equal(t, GradeA, result.Outcome.Grade)
	assert.Contains(t, store.published, "art-1")
}

func TestProcessStructuredLowGradeHoldsOriginal(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: driftedRewriteJSON}}}
	store := newFakeStore()
	svc, _ := newTestService(enabledConfig(), inv, store)

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
		ArticleID:  "art-2",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Outcome)
	assert.False(t, result.Outcome.Published)
	assert.True(t, result.Outcome.Cancelled)
	assert.Equal(t, GradeB, result.Outcome.Grade)
	assert.Empty(t, store.published, "low-grade rewrite must not touch article content")
	assert.Equal(t, GradeB, store.held["art-2"])
}

func TestProcessPreviewWithoutArticleID(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: goodRewriteJSON}}}
	store := newFakeStore()
	svc, _ := newTestService(enabledConfig(), inv, store)

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Parsed)
	require.NotNil(t, result.Validation)
	assert.Empty(t, store.published)
	assert.Empty(t, store.held)
}

func TestProcessParseFailureHoldsArticle(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: "not json at all"}}}
	store := newFakeStore()
	svc, _ := newTestService(enabledConfig(), inv, store)

	_, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
		ArticleID:  "art-3",
	})
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "not json at all", pe.Raw)
	assert.Equal(t, GradeD, store.held["art-3"])
}

func TestProcessDoubleValidationWorseGradeGoverns(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{
		{text: goodRewriteJSON},
		{text: driftedRewriteJSON},
	}}
	store := newFakeStore()
	cfg := enabledConfig()
	cfg.DoubleValidation = true
	svc, slept := newTestService(cfg, inv, store)

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
		ArticleID:  "art-4",
	})
	require.NoError(t, err)

	assert.Contains(t, *slept, 5*time.Second)
	assert.Equal(t, GradeB, result.Outcome.Grade)
	assert.False(t, result.Outcome.Published)
	assert.Empty(t, store.published)
}

func TestProcessDoubleValidationBothAPublishes(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{
		{text: goodRewriteJSON},
		{text: goodRewriteJSON},
	}}
	store := newFakeStore()
	cfg := enabledConfig()
	cfg.DoubleValidation = true
	svc, _ := newTestService(cfg, inv, store)

	result, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
		ArticleID:  "art-5",
	})
	require.NoError(t, err)

	assert.True(t, result.Outcome.Published)
	update := store.published["art-5"]
	assert.True(t, update.DoubleValidated)
}

func TestProcessPersistFailureIsExplicit(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: goodRewriteJSON}}}
	store := newFakeStore()
	store.publishErr = errors.New("db down")
	svc, _ := newTestService(enabledConfig(), inv, store)

	_, err := svc.Process(context.Background(), RewriteRequest{
		SourceText: koreanSource,
		Structured: true,
		ArticleID:  "art-6",
	})
	require.Error(t, err)

	var persistErr *PersistError
	assert.ErrorAs(t, err, &persistErr)
}

func TestProcessUnstructuredReturnsPlainText(t *testing.T) {
	inv := &fakeInvoker{responses: []fakeResponse{{text: "본문을 다듬은 결과"}}}
	store := newFakeStore()
	svc, _ := newTestService(enabledConfig(), inv, store)

	result, err := svc.Process(context.Background(), RewriteRequest{SourceText: koreanSource})
	require.NoError(t, err)
	assert.Equal(t, "본문을 다듬은 결과", result.Text)
	assert.Nil(t, result.Parsed)
	assert.Empty(t, store.published)
	assert.Empty(t, store.held)
}
