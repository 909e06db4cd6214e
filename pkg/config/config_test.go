package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Set up test environment variables
	os.Setenv("botToken", "test-token")
	os.Setenv("ownerId", "42")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("activityType", "Watching")
	defer func() {
		os.Unsetenv("activityType")
		os.Unsetenv("botToken")
		os.Unsetenv("ownerId")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
	}()

	// Reset global config
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.OwnerID != "42" {
		t.Errorf("OwnerID = %v, want %v", config.OwnerID, "42")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if config.ActivityType != "watching" {
		t.Errorf("ActivityType = %v, want %v", config.ActivityType, "watching")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	os.Setenv("storageBackend", "sqlite")
	defer os.Unsetenv("storageBackend")

	resetForTesting()
	defer resetForTesting()

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for an unknown storage backend")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"3", 3},
		{"", 7},
		{"watching", 7},
	}

	for _, tt := range tests {
		os.Setenv("TEST_INT", tt.value)
		if got := getEnvInt("TEST_INT", 7); got != tt.want {
			t.Errorf("getEnvInt(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
	os.Unsetenv("TEST_INT")
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestIsOwner(t *testing.T) {
	c := &Config{OwnerID: "1"}
	if !c.IsOwner("1") {
		t.Error("IsOwner(1) should be true")
	}
	if c.IsOwner("2") {
		t.Error("IsOwner(2) should be false")
	}

	empty := &Config{}
	if empty.IsOwner("") {
		t.Error("IsOwner should be false when no owner is configured")
	}
}

func TestGet(t *testing.T) {
	resetForTesting()

	// Get should create a new config if none exists
	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	// Get should return the same config on subsequent calls
	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	// Clear all environment variables
	for _, key := range []string{
		"botToken", "devGuildId", "mongodbUrl", "dbName", "MQTT_Host", "MQTT_Port",
		"PORT", "enviroment", "prefix", "storageBackend", "dataDir", "statusType",
	} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	// Check default values
	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "PancyModBot" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "PancyModBot")
	}

	if config.MQTTHost != "" {
		t.Errorf("MQTTHost default = %v, want empty", config.MQTTHost)
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}

	if config.Prefix != "!" {
		t.Errorf("Prefix default = %v, want %v", config.Prefix, "!")
	}

	if config.StorageBackend != BackendFile {
		t.Errorf("StorageBackend default = %v, want %v", config.StorageBackend, BackendFile)
	}

	if config.DataDir != "data" {
		t.Errorf("DataDir default = %v, want %v", config.DataDir, "data")
	}

	if config.StatusType != "online" {
		t.Errorf("StatusType default = %v, want %v", config.StatusType, "online")
	}
}
