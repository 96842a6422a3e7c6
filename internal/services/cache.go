package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/models"
)

type CacheItem struct {
	Data      models.WeatherInfo
	ExpiresAt time.Time
}

// WeatherCache holds provider weather per airport code. A zero duration
// disables caching entirely.
type WeatherCache struct {
	mu              sync.RWMutex
	items           map[string]CacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	hits            int
	misses          int
	now             func() time.Time
}

func NewWeatherCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *WeatherCache {
	return &WeatherCache{
		items:           make(map[string]CacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		now:             time.Now,
	}
}

func (c *WeatherCache) Enabled() bool {
	return c.defaultDuration > 0 && c.maxSize > 0
}

func (c *WeatherCache) Set(code string, weather models.WeatherInfo) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict if cache is too large
	if _, exists := c.items[code]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := c.now().Add(c.defaultDuration)
	c.items[code] = CacheItem{
		Data:      weather,
		ExpiresAt: expiresAt,
	}

	c.logger.Debug("Weather cached",
		zap.String("code", code),
		zap.Time("expires_at", expiresAt))
}

func (c *WeatherCache) Get(code string) (models.WeatherInfo, bool) {
	if !c.Enabled() {
		return models.WeatherInfo{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[code]
	if !exists {
		c.misses++
		return models.WeatherInfo{}, false
	}

	if c.now().After(item.ExpiresAt) {
		delete(c.items, code)
		c.misses++
		return models.WeatherInfo{}, false
	}

	c.hits++
	return item.Data, true
}

func (c *WeatherCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.logger.Debug("Evicted oldest weather from cache",
			zap.String("code", oldestKey))
	}
}

// Sweep removes expired entries and reports how many were dropped.
func (c *WeatherCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiredCount := 0
	for code, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, code)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}
	return expiredCount
}

func (c *WeatherCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *WeatherCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"items":            len(c.items),
		"hits":             c.hits,
		"misses":           c.misses,
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
