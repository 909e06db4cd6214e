// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Storage backends accepted by StorageBackend.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	BotID      string
	OwnerID    string
	DevGuildID string
	Prefix     string

	// Presence
	ActivityName string
	ActivityType string
	StatusType   string

	// Guild behaviour
	JoinMessage string
	AutoRoleID  string
	MutedRoleID string

	// Storage
	StorageBackend string
	DataDir        string

	// MongoDB
	MongoDBURL string
	DBName     string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port         string
	AllowedHosts string

	// Environment
	Environment string

	// Logs
	LogDir string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgErr  error
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgErr = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		BotID:      getEnv("botId", ""),
		OwnerID:    getEnv("ownerId", ""),
		DevGuildID: getEnv("devGuildId", ""),
		Prefix:     getEnv("prefix", "!"),

		// Presence
		ActivityName: getEnv("activityName", "/help"),
		ActivityType: strings.ToLower(getEnv("activityType", "playing")),
		StatusType:   strings.ToLower(getEnv("statusType", "online")),

		// Guild behaviour
		JoinMessage: getEnv("joinMessage", ""),
		AutoRoleID:  getEnv("autoRoleId", ""),
		MutedRoleID: getEnv("mutedRoleId", ""),

		// Storage
		StorageBackend: strings.ToLower(getEnv("storageBackend", BackendFile)),
		DataDir:        getEnv("dataDir", "data"),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "PancyModBot"),

		// Redis
		RedisAddr:     getEnv("redisAddr", "localhost:6379"),
		RedisPassword: getEnv("redisPassword", ""),
		RedisDB:       getEnvInt("redisDb", 0),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", ""),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port:         getEnv("PORT", "3000"),
		AllowedHosts: getEnv("allowedHosts", `^(.+\.)?miau\.media`),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Logs
		LogDir: getEnv("logDir", "logs"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
	}

	cfgErr = cfg.validate()
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendFile, BackendMemory, BackendMongo, BackendRedis:
	default:
		return fmt.Errorf("storageBackend %q no soportado", c.StorageBackend)
	}
	return nil
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, cfgErr
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsOwner reports whether userID is the configured bot owner.
func (c *Config) IsOwner(userID string) bool {
	return c.OwnerID != "" && c.OwnerID == userID
}
