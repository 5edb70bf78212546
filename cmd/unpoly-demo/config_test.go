package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yml")
	content := "listen: \":9090\"\ndb: tasks.db\nlogLevel: info\n"
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := getConfig(filename)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if config.Listen != ":9090" || config.DB != "tasks.db" || config.LogLevel != "info" {
		t.Fatalf("Config is %+v", config)
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	if _, err := getConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("No error for missing config file")
	}
}
