package discord

import (
	"fmt"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command loading and registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// LoadCommands reports the commands registered so far. Commands are added
// programmatically by internal/commands before Start.
func (ch *CommandHandler) LoadCommands() error {
	logger.System("Iniciando carga de comandos...", "CommandHandler")

	if ch.client.Commands.Size() == 0 {
		return fmt.Errorf("no hay comandos registrados")
	}

	logger.System(fmt.Sprintf("Carga finalizada: %d comandos en %d comandos de aplicación.",
		ch.client.Commands.Size(), len(ch.slashCommands)), "CommandHandler")
	return nil
}

// appID is the application the commands belong to
func (ch *CommandHandler) appID() string {
	if cfg := ch.client.GetConfig(); cfg != nil && cfg.BotID != "" {
		return cfg.BotID
	}
	if ch.client.Session.State != nil && ch.client.Session.State.User != nil {
		return ch.client.Session.State.User.ID
	}
	return ""
}

// GlobalCommands returns the application commands registered globally
func (ch *CommandHandler) GlobalCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommand adds a command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)

	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())

	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)

		opt := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		}
		options = append(options, opt)
	}

	group := &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
	applyGroupDefaults(group, subcommands)
	return group
}

// applyGroupDefaults hides a group from members lacking the permissions every
// subcommand needs and from DMs when every subcommand is guild-only.
func applyGroupDefaults(group *discordgo.ApplicationCommand, subcommands []*Command) {
	if len(subcommands) == 0 {
		return
	}

	common := subcommands[0].UserPermissions
	guildOnly := true
	for _, cmd := range subcommands {
		common &= cmd.UserPermissions
		guildOnly = guildOnly && cmd.GuildOnly
	}

	if common != 0 {
		group.DefaultMemberPermissions = &common
	}
	if guildOnly {
		dm := false
		group.DMPermission = &dm
	}
}

// RegisterCommands pushes the command set to Discord on ready. Outside prod,
// with a dev guild configured, only that guild is synced so edits show up at once.
func (ch *CommandHandler) RegisterCommands() {
	if cfg := ch.client.GetConfig(); cfg != nil && !cfg.IsProd() && cfg.DevGuildID != "" {
		logger.Info("🔄 Registrando comandos en el servidor de desarrollo "+cfg.DevGuildID+"...", "CommandHandler")
		if err := ch.SyncGuildCommands(cfg.DevGuildID); err != nil {
			logger.Error("Error registrando comandos de desarrollo: "+err.Error(), "CommandHandler")
			return
		}
		logger.Success("✅ Comandos de desarrollo registrados.", "CommandHandler")
		return
	}

	logger.Info("🔄 Registrando comandos globales...", "CommandHandler")
	if err := ch.SyncCommands(); err != nil {
		logger.Error("Error registrando comandos globales: "+err.Error(), "CommandHandler")
		return
	}
	logger.Success("✅ Comandos globales registrados.", "CommandHandler")
}

// SyncCommands replaces the global commands on Discord with the registered ones.
// Commands removed from the code are deleted by the overwrite.
func (ch *CommandHandler) SyncCommands() error {
	return ch.sync("")
}

// SyncGuildCommands replaces a guild's commands with the registered set.
func (ch *CommandHandler) SyncGuildCommands(guildID string) error {
	return ch.sync(guildID)
}

func (ch *CommandHandler) sync(guildID string) error {
	cmds, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), guildID, ch.slashCommands)
	if err != nil {
		if guildID == "" {
			return fmt.Errorf("bulk overwrite global: %w", err)
		}
		return fmt.Errorf("bulk overwrite guild %s: %w", guildID, err)
	}
	logger.Debug(fmt.Sprintf("%d comandos sincronizados (guild=%q)", len(cmds), guildID), "CommandHandler")
	return nil
}

// ListGlobalCommands returns the global commands currently registered on Discord
func (ch *CommandHandler) ListGlobalCommands() ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), "")
}

// ListGuildCommands returns the commands registered on Discord for a guild
func (ch *CommandHandler) ListGuildCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), guildID)
}

// UnregisterCommands removes all registered commands from Discord
func (ch *CommandHandler) UnregisterCommands() error {
	return ch.unregister("")
}

// UnregisterGuildCommands removes all commands registered in a guild
func (ch *CommandHandler) UnregisterGuildCommands(guildID string) error {
	return ch.unregister(guildID)
}

func (ch *CommandHandler) unregister(guildID string) error {
	appID := ch.appID()
	commands, err := ch.client.Session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}

	failed := 0
	for _, cmd := range commands {
		if err := ch.client.Session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			failed++
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d de %d comandos no se pudieron eliminar", failed, len(commands))
	}

	if guildID == "" {
		logger.Success("Comandos globales eliminados.", "CommandHandler")
	} else {
		logger.Success("Comandos del servidor "+guildID+" eliminados.", "CommandHandler")
	}
	return nil
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}
