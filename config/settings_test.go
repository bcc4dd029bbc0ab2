package config_test

import (
	"path/filepath"
	"testing"

	"github.com/mmdatafocus/inventory_backend/config"
)

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultSettingsFile)
	saved := &config.ConnectionSettings{
		Driver:    config.DriverMySQL,
		Host:      "10.1.2.3",
		Port:      3307,
		Database:  "inventory",
		User:      "clerk",
		LastLogin: "admin",
	}
	if err := config.SaveSettings(path, saved); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	loaded, err := config.LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if *loaded != *saved {
		t.Fatalf("loaded = %+v, want %+v", loaded, saved)
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")

	tests := []struct {
		name     string
		settings config.ConnectionSettings
	}{
		{"bad host", config.ConnectionSettings{Driver: config.DriverMySQL, Host: "300.1.1.1", Port: 3306, Database: "db"}},
		{"bad port", config.ConnectionSettings{Driver: config.DriverMySQL, Host: "db.local", Port: 0, Database: "db"}},
		{"missing database", config.ConnectionSettings{Driver: config.DriverMySQL, Host: "db.local", Port: 3306}},
		{"unknown driver", config.ConnectionSettings{Driver: "oracle", Host: "db.local", Port: 3306, Database: "db"}},
		{"sqlite without path", config.ConnectionSettings{Driver: config.DriverSQLite}},
	}
	for _, tt := range tests {
		settings := tt.settings
		if err := config.SaveSettings(path, &settings); err == nil {
			t.Fatalf("%s: SaveSettings accepted invalid settings", tt.name)
		}
	}
	if _, err := config.LoadSettings(path); err == nil {
		t.Fatalf("a refused save must not leave a file behind")
	}
}

func TestValidateHost(t *testing.T) {
	tests := []struct {
		host string
		ok   bool
	}{
		{"192.168.0.10", true},
		{"db-server.local", true},
		{"localhost", true},
		{"", false},
		{"256.0.0.1", false},
		{"-bad.host", false},
		{"with space", false},
	}
	for _, tt := range tests {
		if err := config.ValidateHost(tt.host); (err == nil) != tt.ok {
			t.Fatalf("ValidateHost(%q) = %v, want ok=%v", tt.host, err, tt.ok)
		}
	}
}
