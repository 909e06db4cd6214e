// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with additional functionality for command and event handling.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Messages kept per channel in the state cache, used to log deleted and edited messages.
const stateMessageCount = 200

// DiscordGoLogger wraps the custom logger to implement discordgo.Logger interface
// Note: discordgo.Logger is a function, not an interface
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		default:
			logger.Debug(msg, "DiscordGo")
		}
	}
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	Services       *Services
	StartTime      time.Time

	middlewares []Middleware
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	isReady     bool
}

// CommandCollection holds registered commands
type CommandCollection struct {
	commands map[string]*Command
	mu       sync.RWMutex
}

// NewCommandCollection creates a new CommandCollection
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{
		commands: make(map[string]*Command),
	}
}

// Set adds or updates a command
func (cc *CommandCollection) Set(name string, cmd *Command) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.commands[name] = cmd
}

// Get retrieves a command by name
func (cc *CommandCollection) Get(name string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	cmd, ok := cc.commands[name]
	return cmd, ok
}

// Size returns the number of commands
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

// All returns all commands
func (cc *CommandCollection) All() map[string]*Command {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	result := make(map[string]*Command)
	for k, v := range cc.commands {
		result[k] = v
	}
	return result
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// Get returns the global Discord client
func Get() *ExtendedClient {
	return client
}

// NewClient creates a new ExtendedClient
func NewClient(token string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences |
		discordgo.IntentsGuildModeration |
		discordgo.IntentsGuildVoiceStates

	// Configure session
	session.ShardCount = 1 // Auto sharding equivalent
	session.SyncEvents = false
	session.StateEnabled = true
	session.State.MaxMessageCount = stateMessageCount
	session.LogLevel = discordgo.LogWarning

	ctx, cancel := context.WithCancel(context.Background())
	c := &ExtendedClient{
		Session:     session,
		Commands:    NewCommandCollection(),
		middlewares: defaultMiddlewares,
		ctx:         ctx,
		cancel:      cancel,
		isReady:     false,
	}

	// Initialize handlers
	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// Start initializes and starts the bot
func (c *ExtendedClient) Start() error {
	// Load commands
	if err := c.CommandHandler.LoadCommands(); err != nil {
		logger.Error("Failed to load commands: "+err.Error(), "Client")
		return err
	}

	on(c.EventHandler, "Ready", func(s *discordgo.Session, r *discordgo.Ready) {
		c.setReady(true)
		logger.Success("Bot conectado como: "+r.User.Username, "Client")
		c.CommandHandler.RegisterCommands()
	})
	on(c.EventHandler, "Disconnect", func(*discordgo.Session, *discordgo.Disconnect) { c.setReady(false) })
	on(c.EventHandler, "Resumed", func(*discordgo.Session, *discordgo.Resumed) { c.setReady(true) })
	on(c.EventHandler, "InteractionCreate", c.handleInteraction)

	// Load events
	if err := c.EventHandler.LoadEvents(); err != nil {
		logger.Error("Failed to load events: "+err.Error(), "Client")
		return err
	}

	c.StartTime = time.Now()

	return c.Session.Open()
}

func (c *ExtendedClient) setReady(ready bool) {
	c.mu.Lock()
	c.isReady = ready
	c.mu.Unlock()
}

// commandName builds the registered name of an interaction, "group.sub" for subcommands
func commandName(data discordgo.ApplicationCommandInteractionData) string {
	name := data.Name
	if len(data.Options) > 0 {
		opt := data.Options[0]
		if opt.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			if len(opt.Options) > 0 {
				name = data.Name + "." + opt.Name + "." + opt.Options[0].Name
			}
		} else if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			name = data.Name + "." + opt.Name
		}
	}
	return name
}

// handleInteraction handles incoming Discord interactions
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand && i.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return
	}

	name := commandName(i.ApplicationCommandData())
	ctx := &CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
		CommandName: name,
		Ctx:         c.ctx,
	}

	cmd, ok := c.Commands.Get(name)
	if !ok {
		// Usually a stale command left on Discord; cmd/sync-commands removes it.
		logger.Warn("Comando no encontrado: "+name, "Client")
		if i.Type == discordgo.InteractionApplicationCommand {
			_ = ctx.RespondEphemeral("❌ This command no longer exists.")
		}
		return
	}

	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		if cmd.AutoComplete != nil {
			cmd.AutoComplete(ctx)
		}
		return
	}

	c.Execute(ctx, cmd)
}

// Execute runs the middleware chain and then the command.
func (c *ExtendedClient) Execute(ctx *CommandContext, cmd *Command) {
	for _, mw := range c.middlewares {
		if err := mw(ctx, cmd); err != nil {
			if !replyRefusal(ctx, err) {
				logger.Error(fmt.Sprintf("Middleware de %s falló: %v", ctx.CommandName, err), "Client")
			}
			return
		}
	}

	if err := cmd.Run(ctx); err != nil {
		logger.Error(fmt.Sprintf("Error executing command %s: %v", ctx.CommandName, err), "Client")
	}
}

// Context is cancelled when the client stops.
func (c *ExtendedClient) Context() context.Context {
	return c.ctx
}

// Stop cancels Context, which also drops pending reminders, and closes the session.
func (c *ExtendedClient) Stop() error {
	c.setReady(false)
	c.cancel()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// GetConfig returns the bot configuration
func (c *ExtendedClient) GetConfig() *config.Config {
	if c.Services != nil && c.Services.Config != nil {
		return c.Services.Config
	}
	return config.Get()
}
