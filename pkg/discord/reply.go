package discord

import (
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ReplySink is where a command writes its answer. Slash commands answer the
// interaction; prefix commands answer in the channel.
type ReplySink interface {
	SendText(content string) error
	SendFile(content, name string, r io.Reader) error
	// Defer acknowledges a command that needs more time.
	Defer() error
	// Followup sends the answer of a deferred command.
	Followup(content string) error
}

// interactionResponder is the part of *discordgo.Session used by InteractionSink.
type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// InteractionSink answers an application command interaction. The first
// message is the interaction response; a deferred response is edited once and
// later messages become follow-ups.
type InteractionSink struct {
	session     interactionResponder
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
	deferred  bool
	edited    bool
}

// NewInteractionSink returns a sink for interaction.
func NewInteractionSink(session interactionResponder, interaction *discordgo.Interaction) *InteractionSink {
	return &InteractionSink{session: session, interaction: interaction}
}

func (s *InteractionSink) send(content string, files []*discordgo.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.responded:
		err := s.session.InteractionRespond(s.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Files:   files,
			},
		})
		if err == nil {
			s.responded = true
		}
		return err
	case s.deferred && !s.edited:
		_, err := s.session.InteractionResponseEdit(s.interaction, &discordgo.WebhookEdit{
			Content: &content,
			Files:   files,
		})
		if err == nil {
			s.edited = true
		}
		return err
	default:
		_, err := s.session.FollowupMessageCreate(s.interaction, true, &discordgo.WebhookParams{
			Content: content,
			Files:   files,
		})
		return err
	}
}

func (s *InteractionSink) SendText(content string) error {
	return s.send(content, nil)
}

func (s *InteractionSink) SendFile(content, name string, r io.Reader) error {
	return s.send(content, []*discordgo.File{{
		Name:        name,
		ContentType: "text/plain",
		Reader:      r,
	}})
}

func (s *InteractionSink) Defer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.responded {
		return nil
	}
	err := s.session.InteractionRespond(s.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		s.responded = true
		s.deferred = true
	}
	return err
}

func (s *InteractionSink) Followup(content string) error {
	return s.send(content, nil)
}

// markDeferred records a deferral made outside the sink.
func (s *InteractionSink) markDeferred() {
	s.mu.Lock()
	s.responded = true
	s.deferred = true
	s.mu.Unlock()
}

// markResponded records an initial response sent outside the sink.
func (s *InteractionSink) markResponded() {
	s.mu.Lock()
	s.responded = true
	s.mu.Unlock()
}

func (s *InteractionSink) markEdited() {
	s.mu.Lock()
	s.edited = true
	s.mu.Unlock()
}

// isDeferred reports whether the response is a pending deferral.
func (s *InteractionSink) isDeferred() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deferred
}

// channelSender is the part of *discordgo.Session used by ChannelSink.
type channelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelFileSendWithMessage(channelID, content string, name string, r io.Reader, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

// ChannelSink answers a prefix command by posting in its channel.
type ChannelSink struct {
	session   channelSender
	channelID string
}

// NewChannelSink returns a sink writing to channelID.
func NewChannelSink(session channelSender, channelID string) *ChannelSink {
	return &ChannelSink{session: session, channelID: channelID}
}

func (s *ChannelSink) SendText(content string) error {
	_, err := s.session.ChannelMessageSend(s.channelID, content)
	return err
}

func (s *ChannelSink) SendFile(content, name string, r io.Reader) error {
	_, err := s.session.ChannelFileSendWithMessage(s.channelID, content, name, r)
	return err
}

// Defer shows the typing indicator.
func (s *ChannelSink) Defer() error {
	return s.session.ChannelTyping(s.channelID)
}

func (s *ChannelSink) Followup(content string) error {
	return s.SendText(content)
}
