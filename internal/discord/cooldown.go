package discord

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cooldowns rate-limits guild-scoped commands. One limiter per guild,
// created lazily.
type cooldowns struct {
	mu       sync.Mutex
	every    time.Duration
	limiters map[string]*rate.Limiter
}

func newCooldowns(every time.Duration) *cooldowns {
	return &cooldowns{
		every:    every,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the guild may run a cooled-down command now.
func (c *cooldowns) Allow(guildID string) bool {
	c.mu.Lock()
	limiter, ok := c.limiters[guildID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.every), 1)
		c.limiters[guildID] = limiter
	}
	c.mu.Unlock()
	return limiter.Allow()
}
