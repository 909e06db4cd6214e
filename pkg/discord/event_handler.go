package discord

import (
	"fmt"
	"sort"
	"sync"

	"github.com/PancyStudios/PancyModBot/pkg/errors"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler attaches gateway listeners to the session. Every listener runs
// behind the anti-crash recovery so one bad event can't take the bot down.
type EventHandler struct {
	client *ExtendedClient
	mu     sync.RWMutex
	// counts maps an event name to the number of listeners attached to it.
	counts map[string]int
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
		counts: make(map[string]int),
	}
}

// on wraps fn with panic recovery and adds it to the session. The wrapper keeps
// the concrete func(*Session, E) type that discordgo dispatches on.
func on[E any](eh *EventHandler, name string, fn func(*discordgo.Session, E)) {
	eh.add(name, func(s *discordgo.Session, e E) {
		defer errors.RecoverMiddleware()()
		fn(s, e)
	})
}

func (eh *EventHandler) add(name string, handler interface{}) {
	eh.client.Session.AddHandler(handler)

	eh.mu.Lock()
	eh.counts[name]++
	eh.mu.Unlock()
	logger.Debug(fmt.Sprintf("Evento '%s' registrado", name), "EventHandler")
}

// RegisterEvent adds a raw discordgo handler, for events without an On* helper.
// These are not wrapped in recovery.
func (eh *EventHandler) RegisterEvent(handler interface{}) {
	eh.add(fmt.Sprintf("%T", handler), handler)
}

// Registered returns the names of every event with at least one listener, sorted.
func (eh *EventHandler) Registered() []string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()

	names := make([]string, 0, len(eh.counts))
	for name := range eh.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listeners returns the total number of attached listeners.
func (eh *EventHandler) Listeners() int {
	eh.mu.RLock()
	defer eh.mu.RUnlock()

	total := 0
	for _, n := range eh.counts {
		total += n
	}
	return total
}

// LoadEvents logs a summary of what has been attached. Listeners themselves are
// registered by the events package before Start.
func (eh *EventHandler) LoadEvents() error {
	names := eh.Registered()
	if len(names) == 0 {
		logger.Warn("No hay eventos registrados", "EventHandler")
		return nil
	}
	logger.System(fmt.Sprintf("%d listeners registrados en %d eventos", eh.Listeners(), len(names)), "EventHandler")
	return nil
}

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(fn func(*discordgo.Session, *discordgo.Ready)) {
	on(eh, "Ready", fn)
}

func (eh *EventHandler) OnGuildCreate(fn func(*discordgo.Session, *discordgo.GuildCreate)) {
	on(eh, "GuildCreate", fn)
}

func (eh *EventHandler) OnGuildDelete(fn func(*discordgo.Session, *discordgo.GuildDelete)) {
	on(eh, "GuildDelete", fn)
}

func (eh *EventHandler) OnMessageCreate(fn func(*discordgo.Session, *discordgo.MessageCreate)) {
	on(eh, "MessageCreate", fn)
}

func (eh *EventHandler) OnMessageUpdate(fn func(*discordgo.Session, *discordgo.MessageUpdate)) {
	on(eh, "MessageUpdate", fn)
}

// OnMessageDelete fires after the state cache has been consulted, so
// MessageDelete.BeforeDelete holds the cached message when there was one.
func (eh *EventHandler) OnMessageDelete(fn func(*discordgo.Session, *discordgo.MessageDelete)) {
	on(eh, "MessageDelete", fn)
}

func (eh *EventHandler) OnGuildMemberAdd(fn func(*discordgo.Session, *discordgo.GuildMemberAdd)) {
	on(eh, "GuildMemberAdd", fn)
}

func (eh *EventHandler) OnGuildMemberRemove(fn func(*discordgo.Session, *discordgo.GuildMemberRemove)) {
	on(eh, "GuildMemberRemove", fn)
}

func (eh *EventHandler) OnGuildMembersChunk(fn func(*discordgo.Session, *discordgo.GuildMembersChunk)) {
	on(eh, "GuildMembersChunk", fn)
}

func (eh *EventHandler) OnGuildMemberUpdate(fn func(*discordgo.Session, *discordgo.GuildMemberUpdate)) {
	on(eh, "GuildMemberUpdate", fn)
}

func (eh *EventHandler) OnGuildBanAdd(fn func(*discordgo.Session, *discordgo.GuildBanAdd)) {
	on(eh, "GuildBanAdd", fn)
}

func (eh *EventHandler) OnGuildBanRemove(fn func(*discordgo.Session, *discordgo.GuildBanRemove)) {
	on(eh, "GuildBanRemove", fn)
}

func (eh *EventHandler) OnChannelUpdate(fn func(*discordgo.Session, *discordgo.ChannelUpdate)) {
	on(eh, "ChannelUpdate", fn)
}

func (eh *EventHandler) OnVoiceStateUpdate(fn func(*discordgo.Session, *discordgo.VoiceStateUpdate)) {
	on(eh, "VoiceStateUpdate", fn)
}
