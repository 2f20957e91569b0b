package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlatform_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
platform: android
capabilities:
  platformName: Android
  appium:deviceName: Pixel-8
  appium:automationName: UiAutomator2
env:
  USERNAME: tester
`)

	cfg, err := LoadPlatform(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Platform != "android" {
		t.Errorf("platform = %q", cfg.Platform)
	}
	if cfg.Capabilities["appium:deviceName"] != "Pixel-8" {
		t.Errorf("capabilities = %v", cfg.Capabilities)
	}
	if cfg.Env["USERNAME"] != "tester" {
		t.Errorf("env = %v", cfg.Env)
	}
}

func TestLoadPlatform_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"platform": "web", "url": "https://example.com", "capabilities": {"browserName": "chrome"}}`)

	cfg, err := LoadPlatform(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Platform != "web" || cfg.URL != "https://example.com" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Capabilities["browserName"] != "chrome" {
		t.Errorf("capabilities = %v", cfg.Capabilities)
	}
}

func TestLoadPlatform_NonExistentFile(t *testing.T) {
	if _, err := LoadPlatform("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadPlatform_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `platform: [broken`)
	if _, err := LoadPlatform(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadTasks_JSON(t *testing.T) {
	path := writeFile(t, "tasks.json", `[
		{"task": "login", "details": "Log in as the test user"},
		{"task": "search", "details": "Search for shoes", "skip": true}
	]`)

	tasks, err := LoadTasks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	if tasks[0].Task != "login" || tasks[0].Skip {
		t.Errorf("first task = %+v", tasks[0])
	}
	if !tasks[1].Skip {
		t.Error("second task should be skipped")
	}
}

func TestLoadTasks_YAML(t *testing.T) {
	path := writeFile(t, "tasks.yaml", `
- task: login
  details: Log in as the test user
`)

	tasks, err := LoadTasks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Details != "Log in as the test user" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestLoadTasks_MissingName(t *testing.T) {
	path := writeFile(t, "tasks.json", `[{"details": "nameless"}]`)
	if _, err := LoadTasks(path); err == nil {
		t.Error("expected error for unnamed task")
	}
}

func TestLoadTasks_MissingDetails(t *testing.T) {
	path := writeFile(t, "tasks.json", `[{"task": "empty"}]`)
	if _, err := LoadTasks(path); err == nil {
		t.Error("expected error for task without details")
	}
}
