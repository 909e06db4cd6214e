package cooldown

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTry(t *testing.T) {
	m := NewManager()

	ok, _ := m.Try("u1", "password", time.Minute)
	assert.True(t, ok)

	ok, left := m.Try("u1", "password", time.Minute)
	assert.False(t, ok)
	assert.Greater(t, left, 50*time.Second)

	// Other users and other commands are independent.
	ok, _ = m.Try("u2", "password", time.Minute)
	assert.True(t, ok)
	ok, _ = m.Try("u1", "dice", time.Minute)
	assert.True(t, ok)

	m.Reset("u1", "password")
	ok, _ = m.Try("u1", "password", time.Minute)
	assert.True(t, ok)
}

func TestTryExpires(t *testing.T) {
	m := NewManager()

	ok, _ := m.Try("u1", "slot", 20*time.Millisecond)
	assert.True(t, ok)
	time.Sleep(40 * time.Millisecond)

	ok, _ = m.Try("u1", "slot", 20*time.Millisecond)
	assert.True(t, ok)
}

func TestTryWithoutCooldown(t *testing.T) {
	m := NewManager()
	for i := 0; i < 3; i++ {
		ok, _ := m.Try("u1", "ping", 0)
		assert.True(t, ok)
	}
}

func TestMessage(t *testing.T) {
	got := Message(3500 * time.Millisecond)
	assert.Equal(t, "⏳ This command is on cooldown. Try again in **3.5s**.", got)
	assert.True(t, strings.Contains(Message(-time.Second), "**0.1s**"))
}

func TestSnipeCache(t *testing.T) {
	s := NewSnipeCache(time.Minute)

	_, ok := s.Get("c1")
	assert.False(t, ok)

	s.Put("c1", SnipedMessage{AuthorName: "a", Content: "first"})
	s.Put("c1", SnipedMessage{AuthorName: "b", Content: "second"})
	s.Put("c1", SnipedMessage{AuthorName: "c"})

	got, ok := s.Get("c1")
	assert.True(t, ok)
	assert.Equal(t, "second", got.Content)
	assert.Equal(t, "b", got.AuthorName)
}

func TestSnipeCacheExpires(t *testing.T) {
	s := NewSnipeCache(20 * time.Millisecond)
	s.Put("c1", SnipedMessage{Content: "gone soon"})
	time.Sleep(40 * time.Millisecond)

	_, ok := s.Get("c1")
	assert.False(t, ok)
}
