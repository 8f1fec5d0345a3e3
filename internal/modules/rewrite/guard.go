package rewrite

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/regionpress/core/internal/models"
	rdb "github.com/regionpress/core/internal/pkg/redis"
)

// Guard rejection codes returned to clients.
const (
	GuardCodeInputTooLong  = "input_too_long"
	GuardCodeDailyLimit    = "daily_limit_reached"
	GuardCodeMonthlyBudget = "monthly_budget_exhausted"
)

// GuardLimits are the quota settings in force for one evaluation. Zero
// values disable the corresponding check.
type GuardLimits struct {
	MaxInputLength     int
	DailyRequestLimit  int
	MonthlyTokenBudget int64
}

// GuardDecision is the outcome of a pre-call quota evaluation.
type GuardDecision struct {
	Allowed bool
	Reason  string
	Code    string
}

// UsageEntry is one model call's accounting record.
type UsageEntry struct {
	Region    string
	Provider  string
	Model     string
	KeyLabel  string
	ArticleID string
	Usage     Usage
	Succeeded bool
	Err       error
}

// Guard tracks request and token quotas in Redis and appends usage rows
// to the database. Counter failures never block a rewrite; the guard
// fails open and logs.
type Guard struct {
	db    *gorm.DB
	redis *rdb.Client
	log   *zap.Logger
}

func NewGuard(db *gorm.DB, redis *rdb.Client, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{db: db, redis: redis, log: log}
}

func dailyQuotaKey(region string, t time.Time) string {
	if region == "" {
		region = "global"
	}
	return fmt.Sprintf("rp:quota:day:%s:%s", t.Format("2006-01-02"), region)
}

func monthlyQuotaKey(t time.Time) string {
	return fmt.Sprintf("rp:quota:month:%s", t.Format("2006-01"))
}

// CanProceed evaluates quotas before any model call is made.
func (g *Guard) CanProceed(ctx context.Context, region string, textLength int, limits GuardLimits) GuardDecision {
	if limits.MaxInputLength > 0 && textLength > limits.MaxInputLength {
		return GuardDecision{
			Reason: fmt.Sprintf("input length %d exceeds limit %d", textLength, limits.MaxInputLength),
			Code:   GuardCodeInputTooLong,
		}
	}

	now := time.Now()
	if limits.DailyRequestLimit > 0 {
		count, ok := g.counter(ctx, dailyQuotaKey(region, now))
		if ok && count >= int64(limits.DailyRequestLimit) {
			return GuardDecision{
				Reason: fmt.Sprintf("daily request limit %d reached", limits.DailyRequestLimit),
				Code:   GuardCodeDailyLimit,
			}
		}
	}
	if limits.MonthlyTokenBudget > 0 {
		tokens, ok := g.counter(ctx, monthlyQuotaKey(now))
		if ok && tokens >= limits.MonthlyTokenBudget {
			return GuardDecision{
				Reason: fmt.Sprintf("monthly token budget %d exhausted", limits.MonthlyTokenBudget),
				Code:   GuardCodeMonthlyBudget,
			}
		}
	}

	return GuardDecision{Allowed: true}
}

func (g *Guard) counter(ctx context.Context, key string) (int64, bool) {
	if g.redis == nil {
		return 0, false
	}
	val, err := g.redis.Get(ctx, key)
	if err != nil {
		g.log.Warn("quota counter read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	if val == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LogUsage appends a usage row and bumps the quota counters. It never
// returns an error; accounting failures are logged and swallowed so the
// main flow is never blocked.
func (g *Guard) LogUsage(ctx context.Context, entry UsageEntry) {
	row := models.UsageLogModel{
		Region:       entry.Region,
		Provider:     entry.Provider,
		Model:        entry.Model,
		KeyLabel:     entry.KeyLabel,
		ArticleID:    entry.ArticleID,
		InputTokens:  entry.Usage.InputTokens,
		OutputTokens: entry.Usage.OutputTokens,
		Succeeded:    entry.Succeeded,
	}
	if entry.Err != nil {
		row.Error = entry.Err.Error()
	}
	if g.db != nil {
		if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
			g.log.Warn("usage log write failed", zap.Error(err))
		}
	}

	if g.redis == nil {
		return
	}
	now := time.Now()
	raw := g.redis.Raw()
	dayKey := dailyQuotaKey(entry.Region, now)
	if err := raw.Incr(ctx, dayKey).Err(); err != nil {
		g.log.Warn("daily quota bump failed", zap.Error(err))
	} else {
		raw.Expire(ctx, dayKey, 48*time.Hour)
	}

	total := int64(entry.Usage.InputTokens + entry.Usage.OutputTokens)
	if total > 0 {
		monthKey := monthlyQuotaKey(now)
		if err := raw.IncrBy(ctx, monthKey, total).Err(); err != nil {
			g.log.Warn("monthly quota bump failed", zap.Error(err))
		} else {
			raw.Expire(ctx, monthKey, 40*24*time.Hour)
		}
	}
}
