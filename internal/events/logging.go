// Package events - log channel listeners
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModBot/internal/commands/mod"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logchannel"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const (
	// auditLookback is how many audit entries are searched for the moderator of a kick or ban.
	auditLookback = 5
	newAccountAge = 7 * 24 * time.Hour
	noReason      = "No reason provided"
)

// logListeners renders gateway events into log channel embeds.
type logListeners struct {
	client  *discord.ExtendedClient
	members *roster
	now     func() time.Time
}

// RegisterLoggingEvents registers the listeners that feed the log channels
func RegisterLoggingEvents(client *discord.ExtendedClient) {
	l := &logListeners{client: client, members: newRoster(), now: time.Now}
	eh := client.EventHandler

	eh.OnGuildCreate(l.members.onGuildCreate)
	eh.OnGuildDelete(l.members.onGuildDelete)
	eh.OnGuildMembersChunk(l.members.onMembersChunk)
	eh.OnGuildMemberAdd(l.members.onMemberAdd)
	eh.OnGuildMemberUpdate(l.members.onMemberUpdate)

	eh.OnMessageDelete(l.onMessageDelete)
	eh.OnMessageUpdate(l.onMessageUpdate)
	eh.OnGuildMemberAdd(l.onMemberJoin)
	eh.OnGuildMemberRemove(l.onMemberRemove)
	eh.OnGuildMemberUpdate(l.onMemberUpdate)
	eh.OnVoiceStateUpdate(l.onVoiceStateUpdate)
	eh.OnGuildBanAdd(l.onBan)
	eh.OnGuildBanRemove(l.onUnban)
	eh.OnChannelUpdate(l.onChannelUpdate)
}

func (l *logListeners) send(guildID string, embed *discordgo.MessageEmbed) {
	if embed == nil {
		return
	}
	l.client.Services.Logs.Send(l.client.Context(), guildID, embed)
}

func logEmbed(title string, color int, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Color: color, Timestamp: discord.Timestamp(now)}
}

// userLabel is the "`name`" line shown under a member mention.
func userLabel(u *discordgo.User) string {
	return "`" + u.String() + "`"
}

func messageDeletedEmbed(m *discordgo.Message, now time.Time) *discordgo.MessageEmbed {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return nil
	}
	e := logEmbed("🗑️  Message Deleted", discord.ColorError, now)
	e.Author = discord.Author(m.Author)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 Author", m.Author.Mention(), true),
		discord.Field("📺 Channel", "<#"+m.ChannelID+">", true),
	}
	if m.Content != "" {
		e.Fields = append(e.Fields, discord.Field("📝 Content", logchannel.TruncateField(m.Content), false))
	}
	e.Footer = discord.UserFooter(m.Author.ID)
	return e
}

func (l *logListeners) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	before := m.BeforeDelete
	if before == nil {
		logger.Debug(fmt.Sprintf("Mensaje %s eliminado fuera de la caché", m.ID), "Logs")
		return
	}
	if before.GuildID == "" {
		before.GuildID = m.GuildID
	}
	l.send(m.GuildID, messageDeletedEmbed(before, l.now()))
}

func messageEditedEmbed(before, after *discordgo.Message, now time.Time) *discordgo.MessageEmbed {
	if before == nil || after == nil || before.Author == nil || before.Author.Bot {
		return nil
	}
	if before.Content == after.Content {
		return nil
	}
	guildID := after.GuildID
	if guildID == "" {
		guildID = before.GuildID
	}
	jump := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, after.ChannelID, after.ID)

	e := logEmbed("✏️  Message Edited", discord.ColorGold, now)
	e.Author = discord.Author(before.Author)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 Author", before.Author.Mention(), true),
		discord.Field("📺 Channel", "<#"+after.ChannelID+">", true),
		discord.Field("🔗 Jump", "[View Message]("+jump+")", true),
		discord.Field("Before", logchannel.Preview(before.Content), false),
		discord.Field("After", logchannel.Preview(after.Content), false),
	}
	e.Footer = discord.UserFooter(before.Author.ID)
	return e
}

func (l *logListeners) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	// Embed-only updates carry no content.
	if m.Message == nil || m.Author == nil {
		return
	}
	l.send(m.GuildID, messageEditedEmbed(m.BeforeUpdate, m.Message, l.now()))
}

func memberJoinedEmbed(u *discordgo.User, memberCount int, now time.Time) *discordgo.MessageEmbed {
	created, err := discordgo.SnowflakeTimestamp(u.ID)
	age := fmt.Sprintf("<t:%d:R>", created.Unix())
	if err != nil {
		age = "Unknown"
	} else if now.Sub(created) < newAccountAge {
		age += "  ⚠️ **New account!**"
	}

	e := logEmbed("📥  Member Joined", discord.ColorSuccess, now)
	e.Thumbnail = discord.Thumbnail(u)
	e.Author = discord.Author(u)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 Member", u.Mention()+"\n"+userLabel(u), true),
		discord.Field("📅 Account Age", age, true),
		discord.Field("👥 Member Count", fmt.Sprint(memberCount), true),
	}
	e.Footer = discord.UserFooter(u.ID)
	return e
}

func (l *logListeners) memberCount(s *discordgo.Session, guildID string) int {
	if g, err := s.State.Guild(guildID); err == nil {
		return g.MemberCount
	}
	return 0
}

func (l *logListeners) onMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil {
		return
	}
	l.send(m.GuildID, memberJoinedEmbed(m.User, l.memberCount(s, m.GuildID), l.now()))
}

// auditEntry finds the newest entry targeting targetID and resolves its moderator name.
func auditEntry(log *discordgo.GuildAuditLog, targetID string) (moderator, reason string, ok bool) {
	if log == nil {
		return "", "", false
	}
	for _, entry := range log.AuditLogEntries {
		if entry.TargetID != targetID {
			continue
		}
		moderator = "Unknown"
		for _, u := range log.Users {
			if u.ID == entry.UserID {
				moderator = u.String()
				break
			}
		}
		return moderator, entry.Reason, true
	}
	return "", "", false
}

// lookupAudit queries the audit log. Missing ViewAuditLog permission is not an error worth logging.
func lookupAudit(s *discordgo.Session, guildID, targetID string, action discordgo.AuditLogAction) (moderator, reason string, ok bool) {
	log, err := s.GuildAuditLog(guildID, "", "", int(action), auditLookback)
	if err != nil {
		if discord.Classify(err).Kind != discord.KindPermissionDenied {
			logger.Debug(fmt.Sprintf("No se pudo leer el registro de auditoría de %s: %v", guildID, err), "Logs")
		}
		return "", "", false
	}
	return auditEntry(log, targetID)
}

func memberKickedEmbed(u *discordgo.User, moderator, reason string, now time.Time) *discordgo.MessageEmbed {
	if reason == "" {
		reason = noReason
	}
	e := logEmbed("👢  Member Kicked", discord.ColorWarn, now)
	e.Thumbnail = discord.Thumbnail(u)
	e.Author = discord.Author(u)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 Member", u.Mention()+"\n"+userLabel(u), true),
		discord.Field("🛡️ Moderator", moderator, true),
		discord.Field("📝 Reason", reason, false),
	}
	e.Footer = discord.UserFooter(u.ID)
	return e
}

func memberLeftEmbed(m *discordgo.Member, remaining int, now time.Time) *discordgo.MessageEmbed {
	joined := "Unknown"
	if !m.JoinedAt.IsZero() {
		joined = fmt.Sprintf("<t:%d:R>", m.JoinedAt.Unix())
	}

	e := logEmbed("📤  Member Left", discord.ColorError, now)
	e.Thumbnail = discord.Thumbnail(m.User)
	e.Author = discord.Author(m.User)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 Member", userLabel(m.User), true),
		discord.Field("📥 Joined", joined, true),
		discord.Field("👥 Remaining", fmt.Sprint(remaining), true),
	}
	var roles []string
	for _, id := range m.Roles {
		if id != m.GuildID {
			roles = append(roles, "<@&"+id+">")
		}
	}
	if len(roles) > 0 {
		e.Fields = append(e.Fields, discord.Field("🎭 Roles", logchannel.TruncateField(strings.Join(roles, ", ")), false))
	}
	e.Footer = discord.UserFooter(m.User.ID)
	return e
}

func (l *logListeners) onMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil {
		return
	}
	member := l.members.fill(m.Member)
	if moderator, reason, ok := lookupAudit(s, m.GuildID, m.User.ID, discordgo.AuditLogActionMemberKick); ok {
		l.send(m.GuildID, memberKickedEmbed(m.User, moderator, reason, l.now()))
		return
	}
	l.send(m.GuildID, memberLeftEmbed(member, l.memberCount(s, m.GuildID), l.now()))
}

func bannedEmbed(u *discordgo.User, moderator, reason string, now time.Time) *discordgo.MessageEmbed {
	e := logEmbed("🔨  Member Banned", discord.ColorMod, now)
	e.Thumbnail = discord.Thumbnail(u)
	e.Author = discord.Author(u)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 User", u.Mention()+"\n"+userLabel(u), true),
		discord.Field("🛡️ Moderator", moderator, true),
		discord.Field("📝 Reason", reason, false),
	}
	e.Footer = discord.UserFooter(u.ID)
	return e
}

func unbannedEmbed(u *discordgo.User, moderator string, now time.Time) *discordgo.MessageEmbed {
	e := logEmbed("🔓  Member Unbanned", discord.ColorSuccess, now)
	e.Thumbnail = discord.Thumbnail(u)
	e.Author = discord.Author(u)
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("👤 User", userLabel(u), true),
		discord.Field("🛡️ Moderator", moderator, true),
	}
	e.Footer = discord.UserFooter(u.ID)
	return e
}

func (l *logListeners) onBan(s *discordgo.Session, b *discordgo.GuildBanAdd) {
	if b.User == nil {
		return
	}
	moderator, reason := "Unknown", noReason
	if who, why, ok := lookupAudit(s, b.GuildID, b.User.ID, discordgo.AuditLogActionMemberBanAdd); ok {
		moderator = who
		if why != "" {
			reason = why
		}
	}
	l.send(b.GuildID, bannedEmbed(b.User, moderator, reason, l.now()))
}

func (l *logListeners) onUnban(s *discordgo.Session, b *discordgo.GuildBanRemove) {
	if b.User == nil {
		return
	}
	moderator := "Unknown"
	if who, _, ok := lookupAudit(s, b.GuildID, b.User.ID, discordgo.AuditLogActionMemberBanRemove); ok {
		moderator = who
	}
	l.send(b.GuildID, unbannedEmbed(b.User, moderator, l.now()))
}

// roleDiff returns the role IDs present only in after and only in before.
func roleDiff(before, after []string) (added, removed []string) {
	had := make(map[string]bool, len(before))
	for _, id := range before {
		had[id] = true
	}
	has := make(map[string]bool, len(after))
	for _, id := range after {
		has[id] = true
		if !had[id] {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if !has[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func roleMentions(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "<@&" + id + ">"
	}
	return logchannel.TruncateField(strings.Join(out, ", "))
}

func orNone(s string) string {
	if s == "" {
		return "*None*"
	}
	return s
}

// memberUpdateEmbeds covers nickname changes, the muted role and other role changes.
// mutedRoleID may be empty when the guild has no muted role.
func memberUpdateEmbeds(before, after *discordgo.Member, mutedRoleID string, now time.Time) []*discordgo.MessageEmbed {
	u := after.User
	var out []*discordgo.MessageEmbed

	if before.Nick != after.Nick {
		e := logEmbed("✏️  Nickname Changed", discord.ColorInfo, now)
		e.Author = discord.Author(u)
		e.Fields = []*discordgo.MessageEmbedField{
			discord.Field("👤 Member", u.Mention(), true),
			discord.Field("Before", orNone(before.Nick), true),
			discord.Field("After", orNone(after.Nick), true),
		}
		e.Footer = discord.UserFooter(u.ID)
		out = append(out, e)
	}

	added, removed := roleDiff(before.Roles, after.Roles)
	mutedChange := func(title string, color int) {
		e := logEmbed(title, color, now)
		e.Author = discord.Author(u)
		e.Fields = []*discordgo.MessageEmbedField{discord.Field("👤 Member", u.Mention()+"\n"+userLabel(u), true)}
		e.Footer = discord.UserFooter(u.ID)
		out = append(out, e)
	}
	without := func(ids []string) []string {
		var kept []string
		for _, id := range ids {
			if id == mutedRoleID {
				continue
			}
			kept = append(kept, id)
		}
		return kept
	}
	if mutedRoleID != "" {
		if len(without(added)) != len(added) {
			mutedChange("🔇  Member Muted", discord.ColorWarn)
		}
		if len(without(removed)) != len(removed) {
			mutedChange("🔊  Member Unmuted", discord.ColorSuccess)
		}
		added, removed = without(added), without(removed)
	}

	if len(added) > 0 || len(removed) > 0 {
		e := logEmbed("🎭  Roles Updated", discord.ColorInfo, now)
		e.Author = discord.Author(u)
		e.Fields = []*discordgo.MessageEmbedField{discord.Field("👤 Member", u.Mention(), false)}
		if len(added) > 0 {
			e.Fields = append(e.Fields, discord.Field("➕ Added", roleMentions(added), false))
		}
		if len(removed) > 0 {
			e.Fields = append(e.Fields, discord.Field("➖ Removed", roleMentions(removed), false))
		}
		e.Footer = discord.UserFooter(u.ID)
		out = append(out, e)
	}
	return out
}

func (l *logListeners) onMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	// Without the cached member there is nothing to compare against.
	if m.BeforeUpdate == nil || m.Member == nil || m.User == nil {
		return
	}

	mutedRoleID := ""
	if roles, err := discord.FetchRoles(s, m.GuildID); err == nil {
		if r := mod.FindMutedRole(roles, l.client.Services.Config.MutedRoleID); r != nil {
			mutedRoleID = r.ID
		}
	}

	for _, e := range memberUpdateEmbeds(m.BeforeUpdate, m.Member, mutedRoleID, l.now()) {
		l.send(m.GuildID, e)
	}
}

// channelChanges lists name, topic and slowmode changes.
func channelChanges(before, after *discordgo.Channel) []string {
	var changes []string
	if before.Name != after.Name {
		changes = append(changes, fmt.Sprintf("**Name:** `%s` → `%s`", before.Name, after.Name))
	}
	if before.Topic != after.Topic {
		changes = append(changes, fmt.Sprintf("**Topic:** `%s` → `%s`", orValue(before.Topic, "None"), orValue(after.Topic, "None")))
	}
	if before.RateLimitPerUser != after.RateLimitPerUser {
		changes = append(changes, fmt.Sprintf("**Slowmode:** `%ds` → `%ds`", before.RateLimitPerUser, after.RateLimitPerUser))
	}
	return changes
}

func orValue(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func (l *logListeners) onChannelUpdate(s *discordgo.Session, c *discordgo.ChannelUpdate) {
	if c.BeforeUpdate == nil || c.Channel == nil {
		return
	}
	changes := channelChanges(c.BeforeUpdate, c.Channel)
	if len(changes) == 0 {
		return
	}
	e := logEmbed("📺  Channel Updated", discord.ColorInfo, l.now())
	e.Fields = []*discordgo.MessageEmbedField{
		discord.Field("📺 Channel", c.Mention(), true),
		discord.Field("📝 Changes", logchannel.TruncateField(strings.Join(changes, "\n")), false),
	}
	l.send(c.GuildID, e)
}

// voiceEmbed describes a move between voice channels. Empty names mean "not connected".
func voiceEmbed(u *discordgo.User, from, to string, now time.Time) *discordgo.MessageEmbed {
	var e *discordgo.MessageEmbed
	switch {
	case from == to:
		return nil
	case from == "":
		e = logEmbed("🎙️  Joined Voice", discord.ColorSuccess, now)
		e.Fields = []*discordgo.MessageEmbedField{
			discord.Field("👤 Member", u.Mention(), true),
			discord.Field("🔊 Channel", to, true),
		}
	case to == "":
		e = logEmbed("🎙️  Left Voice", discord.ColorError, now)
		e.Fields = []*discordgo.MessageEmbedField{
			discord.Field("👤 Member", u.Mention(), true),
			discord.Field("🔊 Channel", from, true),
		}
	default:
		e = logEmbed("🎙️  Switched Voice Channel", discord.ColorGold, now)
		e.Fields = []*discordgo.MessageEmbedField{
			discord.Field("👤 Member", u.Mention(), true),
			discord.Field("From", from, true),
			discord.Field("To", to, true),
		}
	}
	e.Author = discord.Author(u)
	e.Footer = discord.UserFooter(u.ID)
	return e
}

func channelName(s *discordgo.Session, channelID string) string {
	if channelID == "" {
		return ""
	}
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch.Name
	}
	return channelID
}

func (l *logListeners) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	beforeID := ""
	if v.BeforeUpdate != nil {
		beforeID = v.BeforeUpdate.ChannelID
	}
	if beforeID == v.ChannelID || v.GuildID == "" {
		return
	}

	var user *discordgo.User
	if v.Member != nil {
		user = v.Member.User
	}
	if user == nil {
		m, err := discord.FetchMember(s, v.GuildID, v.UserID)
		if err != nil {
			logger.Debug(fmt.Sprintf("Miembro de voz %s desconocido: %v", v.UserID, err), "Logs")
			return
		}
		user = m.User
	}

	l.send(v.GuildID, voiceEmbed(user, channelName(s, beforeID), channelName(s, v.ChannelID), l.now()))
}
