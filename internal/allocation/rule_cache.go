package allocation

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/HarvestShare_Go/internal/domain"
	"github.com/osse101/HarvestShare_Go/internal/repository"
)

// Cache defaults
const (
	DefaultRuleCacheSize = 256
	DefaultRuleCacheTTL  = 5 * time.Minute
)

// CachedRuleRepository wraps a RuleStore with an expiring LRU keyed on the lookup filter.
// Only rules are cached; allocation and claim state is always read from the store.
// Rules written through CreateRule are visible to the next lookup; rules written by
// another process are picked up once the cached entry expires.
type CachedRuleRepository struct {
	next repository.RuleStore
	lru  *expirable.LRU[string, []domain.AllocationRule]
}

var _ repository.RuleStore = (*CachedRuleRepository)(nil)

// NewCachedRuleRepository creates a rule cache in front of next.
// Non-positive size or ttl fall back to the defaults.
func NewCachedRuleRepository(next repository.RuleStore, size int, ttl time.Duration) *CachedRuleRepository {
	if size <= 0 {
		size = DefaultRuleCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultRuleCacheTTL
	}
	return &CachedRuleRepository{
		next: next,
		lru:  expirable.NewLRU[string, []domain.AllocationRule](size, nil, ttl),
	}
}

func filterKey(f domain.RuleFilter) string {
	var b strings.Builder
	b.WriteString(f.GardenID)
	b.WriteByte('|')
	if f.SeasonID != nil {
		b.WriteString("s:")
		b.WriteString(*f.SeasonID)
	}
	b.WriteByte('|')
	if f.CropType != nil {
		b.WriteString("c:")
		b.WriteString(*f.CropType)
	}
	if f.ActiveOnly {
		b.WriteString("|active")
	}
	return b.String()
}

// ListRules returns cached rules for filter, loading them from the wrapped repository on a miss.
// Callers receive a copy and may reorder it freely.
func (c *CachedRuleRepository) ListRules(ctx context.Context, filter domain.RuleFilter) ([]domain.AllocationRule, error) {
	key := filterKey(filter)
	if rules, ok := c.lru.Get(key); ok {
		return append([]domain.AllocationRule(nil), rules...), nil
	}

	rules, err := c.next.ListRules(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, append([]domain.AllocationRule(nil), rules...))
	return rules, nil
}

// CreateRule writes through to the wrapped store and drops the garden's cached lookups
func (c *CachedRuleRepository) CreateRule(ctx context.Context, rule *domain.AllocationRule) error {
	if err := c.next.CreateRule(ctx, rule); err != nil {
		return err
	}
	c.InvalidateGarden(rule.GardenID)
	return nil
}

// InvalidateGarden drops every cached lookup for a garden.
func (c *CachedRuleRepository) InvalidateGarden(gardenID string) {
	prefix := gardenID + "|"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

// Len returns the number of cached lookups.
func (c *CachedRuleRepository) Len() int {
	return c.lru.Len()
}
