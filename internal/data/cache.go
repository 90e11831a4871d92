package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"spot-optimizer/internal/model"
)

type cacheEntry struct {
	records   []model.SpotPrice
	expiresAt time.Time
}

// PriceCache is an in-memory TTL cache of fetched spot-price windows. It keeps
// repeated requests for the same window from hitting the Netztransparenz API.
// All methods are nil-safe so callers can hold a nil cache when caching is
// disabled.
type PriceCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

func NewPriceCache(ttl time.Duration) *PriceCache {
	c := &PriceCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
	}
	go c.cleanup()
	return c
}

// CacheFromEnv builds a cache from ENABLE_PRICE_CACHE / PRICE_CACHE_TTL.
// Returns nil when caching is disabled or when API_ENV=production; historical
// prices rarely change, but production should always see fresh data.
func CacheFromEnv() *PriceCache {
	if os.Getenv("ENABLE_PRICE_CACHE") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}

	ttl := time.Hour
	if s := os.Getenv("PRICE_CACHE_TTL"); s != "" {
		if parsed, err := time.ParseDuration(s); err == nil {
			ttl = parsed
		}
	}
	return NewPriceCache(ttl)
}

func (c *PriceCache) Get(key string) ([]model.SpotPrice, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.records, true
}

func (c *PriceCache) Set(key string, records []model.SpotPrice) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = cacheEntry{
		records:   records,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *PriceCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
}

func (c *PriceCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.store {
			if now.After(entry.expiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}

// Fetcher retrieves spot prices for a date window.
type Fetcher interface {
	FetchSpotPrices(start, end time.Time) ([]model.SpotPrice, error)
}

// CachedFetcher wraps a Fetcher with a PriceCache. A nil cache degrades to a
// plain pass-through.
type CachedFetcher struct {
	Inner Fetcher
	Cache *PriceCache
}

func (f *CachedFetcher) FetchSpotPrices(start, end time.Time) ([]model.SpotPrice, error) {
	key := cacheKey(start, end)
	if records, ok := f.Cache.Get(key); ok {
		return records, nil
	}

	records, err := f.Inner.FetchSpotPrices(start, end)
	if err != nil {
		return nil, err
	}
	f.Cache.Set(key, records)
	return records, nil
}

func cacheKey(start, end time.Time) string {
	keyStr := fmt.Sprintf("%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
