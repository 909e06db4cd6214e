// Package main is the entry point for PancyModBot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyModBot/internal/commands"
	"github.com/PancyStudios/PancyModBot/internal/events"
	"github.com/PancyStudios/PancyModBot/pkg/config"
	"github.com/PancyStudios/PancyModBot/pkg/database"
	"github.com/PancyStudios/PancyModBot/pkg/discord"
	"github.com/PancyStudios/PancyModBot/pkg/errors"
	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/mqtt"
	"github.com/PancyStudios/PancyModBot/pkg/storage"
	"github.com/PancyStudios/PancyModBot/pkg/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "PancyModBot: %v\n", err)
		os.Exit(1)
	}
}

// run starts every system and blocks until SIGINT or SIGTERM. Startup failures
// are returned so the deferred cleanup still runs.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Initialize logger
	log := logger.Init(cfg.LogDir, cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyModBot %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
			}
		}
	})
	defer errors.Get().Stop()

	// Open storage
	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el almacenamiento: %v", err), "Main")
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando el almacenamiento: %v", err), "Main")
		}
		if db := database.Get(); db != nil {
			if err := db.Disconnect(); err != nil {
				logger.Error(fmt.Sprintf("Error desconectando MongoDB: %v", err), "Main")
			}
		}
	}()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el cliente de Discord: %v", err), "Main")
		return fmt.Errorf("creating Discord client: %w", err)
	}
	services := discord.NewServices(cfg, store, discordClient.Session)
	discordClient.Services = services

	// Initialize MQTT, only when a broker is configured
	if cfg.MQTTHost != "" {
		mqttClientID := "pancymodbot"
		if !cfg.IsProd() {
			mqttClientID = "pancymodbot_canary"
		}
		mqttClient := mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		mqttClient.RegisterHandlers(services.Warnings, services.LogChannels)
		services.Events = mqttClient
		defer mqttClient.Destroy()
	} else {
		logger.Info("MQTT deshabilitado (MQTT_Host vacío)", "Main")
	}

	// Initialize web server
	webServer, err := web.Init(cfg.LogsWebServerHook, cfg.AllowedHosts)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el servidor web: %v", err), "Main")
		return fmt.Errorf("creating web server: %w", err)
	}
	web.SetupAPIRoutes(webServer, &web.API{
		Warnings:    services.Warnings,
		LogChannels: services.LogChannels,
		Bot:         discordClient,
		Backend:     cfg.StorageBackend,
	})
	webServer.StartAsync(cfg.Port)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := webServer.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("Error deteniendo el servidor web: %v", err), "Main")
		}
	}()

	// Register commands and events
	commands.RegisterAll(discordClient)
	events.RegisterAll(discordClient)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error iniciando el cliente de Discord: %v", err), "Main")
		return fmt.Errorf("starting Discord client: %w", err)
	}
	// Stop cancels the client context, which also drops pending reminders.
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
		}
	}()

	logger.Success("PancyModBot iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyModBot...", "Main")
	return nil
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
