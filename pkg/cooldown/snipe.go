package cooldown

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SnipeTTL is how long a deleted message stays available to /extras snipe.
const SnipeTTL = 10 * time.Minute

// SnipedMessage is the last deleted message seen in a channel.
type SnipedMessage struct {
	AuthorID   string
	AuthorName string
	AvatarURL  string
	Content    string
	DeletedAt  time.Time
}

// SnipeCache keeps one SnipedMessage per channel.
type SnipeCache struct {
	c *cache.Cache
}

// NewSnipeCache returns a cache whose entries expire after ttl.
func NewSnipeCache(ttl time.Duration) *SnipeCache {
	return &SnipeCache{c: cache.New(ttl, 2*ttl)}
}

// Put replaces the channel's sniped message. Empty content is ignored.
func (s *SnipeCache) Put(channelID string, msg SnipedMessage) {
	if msg.Content == "" {
		return
	}
	s.c.SetDefault(channelID, msg)
}

// Get returns the channel's last deleted message, if still cached.
func (s *SnipeCache) Get(channelID string) (SnipedMessage, bool) {
	v, ok := s.c.Get(channelID)
	if !ok {
		return SnipedMessage{}, false
	}
	return v.(SnipedMessage), true
}
