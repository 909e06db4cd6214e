// Command sync-commands manages the bot's slash commands on Discord without
// starting the bot.
//
// Usage:
//
//	sync-commands [-guild <id>] [-list | -diff | -clean]
//
// With no action flag the registered commands overwrite the remote set, which
// also deletes anything no longer defined in code. -guild targets a single guild,
// where changes appear immediately; global commands can take up to an hour.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/PancyStudios/PancyModBot/internal/commands"
	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const prefix = "SyncCommands"

func main() {
	list := flag.Bool("list", false, "List the commands registered on Discord")
	diff := flag.Bool("diff", false, "Show which commands a sync would add or remove")
	clean := flag.Bool("clean", false, "Remove every command without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogDir, cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el cliente de Discord: %v", err), prefix)
		os.Exit(1)
	}

	// Only REST calls are made, so the application ID comes from /users/@me
	// instead of a gateway Ready.
	me, err := client.Session.User("@me")
	if err != nil {
		logger.Critical(fmt.Sprintf("Token inválido o Discord no disponible: %v", err), prefix)
		os.Exit(1)
	}
	client.Session.State.User = me
	logger.Success("Autenticado como "+me.String(), prefix)

	commands.RegisterAll(client)
	target := "global"
	if *guildID != "" {
		target = "guild " + *guildID
	}

	switch {
	case *list:
		err = listCommands(client, *guildID)
	case *diff:
		err = showDiff(client, *guildID)
	case *clean:
		logger.Info("🧹 Eliminando comandos ("+target+")...", prefix)
		if *guildID != "" {
			err = client.CommandHandler.UnregisterGuildCommands(*guildID)
		} else {
			err = client.CommandHandler.UnregisterCommands()
		}
	default:
		logger.Info("🔄 Sincronizando comandos ("+target+")...", prefix)
		if *guildID != "" {
			err = client.CommandHandler.SyncGuildCommands(*guildID)
		} else {
			err = client.CommandHandler.SyncCommands()
		}
	}

	if err != nil {
		logger.Error(fmt.Sprintf("La operación falló: %v", err), prefix)
		os.Exit(1)
	}
	logger.Success("Operación completada exitosamente", prefix)
}

func remoteCommands(client *discord.ExtendedClient, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if guildID != "" {
		return client.CommandHandler.ListGuildCommands(guildID)
	}
	return client.CommandHandler.ListGlobalCommands()
}

func listCommands(client *discord.ExtendedClient, guildID string) error {
	cmds, err := remoteCommands(client, guildID)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", prefix)
		return nil
	}

	logger.Info(fmt.Sprintf("📋 Comandos encontrados: %d", len(cmds)), prefix)
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), prefix)
	}
	return nil
}

func showDiff(client *discord.ExtendedClient, guildID string) error {
	remote, err := remoteCommands(client, guildID)
	if err != nil {
		return err
	}

	missing, stale := diffCommands(client.CommandHandler.GlobalCommands(), remote)
	if len(missing) == 0 && len(stale) == 0 {
		logger.Success("✅ Los comandos ya están sincronizados", prefix)
		return nil
	}
	for _, name := range missing {
		logger.Info("  + /"+name, prefix)
	}
	for _, name := range stale {
		logger.Warn("  - /"+name, prefix)
	}
	return nil
}

// diffCommands returns the names a sync would create (missing remotely) and
// delete (stale remotely), each sorted.
func diffCommands(local, remote []*discordgo.ApplicationCommand) (missing, stale []string) {
	inLocal := make(map[string]bool, len(local))
	for _, c := range local {
		inLocal[c.Name] = true
	}
	inRemote := make(map[string]bool, len(remote))
	for _, c := range remote {
		inRemote[c.Name] = true
		if !inLocal[c.Name] {
			stale = append(stale, c.Name)
		}
	}
	for _, c := range local {
		if !inRemote[c.Name] {
			missing = append(missing, c.Name)
		}
	}
	sort.Strings(missing)
	sort.Strings(stale)
	return missing, stale
}
