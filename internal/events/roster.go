package events

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// memberRecord is what the leave log needs once the member is gone.
type memberRecord struct {
	roles    []string
	joinedAt time.Time
}

// roster remembers the roles and join date of every known member. discordgo
// drops a member from its state before GuildMemberRemove reaches listeners, so
// the leave log reads from here instead.
type roster struct {
	mu     sync.Mutex
	guilds map[string]map[string]memberRecord
}

func newRoster() *roster {
	return &roster{guilds: make(map[string]map[string]memberRecord)}
}

func (r *roster) put(guildID string, m *discordgo.Member) {
	if m == nil || m.User == nil || guildID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.guilds[guildID]
	if !ok {
		members = make(map[string]memberRecord)
		r.guilds[guildID] = members
	}
	members[m.User.ID] = memberRecord{roles: append([]string(nil), m.Roles...), joinedAt: m.JoinedAt}
}

// take returns and forgets the member's record.
func (r *roster) take(guildID, userID string) (memberRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.guilds[guildID][userID]
	if ok {
		delete(r.guilds[guildID], userID)
	}
	return rec, ok
}

func (r *roster) dropGuild(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.guilds, guildID)
}

func (r *roster) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	for _, m := range g.Members {
		r.put(g.ID, m)
	}
}

func (r *roster) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	r.dropGuild(g.ID)
}

func (r *roster) onMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member != nil {
		r.put(m.GuildID, m.Member)
	}
}

func (r *roster) onMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member != nil {
		r.put(m.GuildID, m.Member)
	}
}

func (r *roster) onMembersChunk(_ *discordgo.Session, c *discordgo.GuildMembersChunk) {
	for _, m := range c.Members {
		r.put(c.GuildID, m)
	}
}

// fill completes a departed member with the roles and join date it had.
func (r *roster) fill(m *discordgo.Member) *discordgo.Member {
	rec, ok := r.take(m.GuildID, m.User.ID)
	if !ok {
		return m
	}
	filled := *m
	if len(filled.Roles) == 0 {
		filled.Roles = rec.roles
	}
	if filled.JoinedAt.IsZero() {
		filled.JoinedAt = rec.joinedAt
	}
	return &filled
}
