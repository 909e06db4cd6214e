// Package cooldown holds short-lived in-memory state: per-user command
// cooldowns and the last deleted message of each channel.
package cooldown

import (
	"fmt"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager tracks command cooldowns per (user, command).
type Manager struct {
	c *cache.Cache
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{c: cache.New(time.Minute, 5*time.Minute)}
}

func cooldownKey(userID, command string) string {
	return userID + ":" + command
}

// Try starts a cooldown of length d for userID on command. When one is already
// running it returns false and the time left.
func (m *Manager) Try(userID, command string, d time.Duration) (bool, time.Duration) {
	if d <= 0 {
		return true, 0
	}

	key := cooldownKey(userID, command)
	if err := m.c.Add(key, struct{}{}, d); err == nil {
		return true, 0
	}

	_, expires, found := m.c.GetWithExpiration(key)
	if !found {
		// Expired between Add and the lookup.
		m.c.Set(key, struct{}{}, d)
		return true, 0
	}
	return false, time.Until(expires)
}

// Reset clears a running cooldown.
func (m *Manager) Reset(userID, command string) {
	m.c.Delete(cooldownKey(userID, command))
}

// Message formats the refusal shown while a cooldown is running.
func Message(remaining time.Duration) string {
	secs := math.Max(remaining.Seconds(), 0.1)
	return fmt.Sprintf("⏳ This command is on cooldown. Try again in **%.1fs**.", secs)
}
