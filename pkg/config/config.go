// Package config handles configuration for agent-runner.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Platform describes the backend one session targets. The file is YAML;
// JSON files load too since YAML is a superset.
type Platform struct {
	// Platform name: web, android, or ios
	Platform string `yaml:"platform"`
	// Initial URL, web only
	URL string `yaml:"url"`
	// Raw session capabilities forwarded to the automation server
	Capabilities map[string]interface{} `yaml:"capabilities"`
	// Environment variables exposed to task expressions
	Env map[string]string `yaml:"env"`
}

// LoadPlatform loads a platform configuration file.
func LoadPlatform(path string) (*Platform, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Platform
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Task is one unit of work for the agent.
type Task struct {
	Task    string `yaml:"task" json:"task"`
	Details string `yaml:"details" json:"details"`
	Skip    bool   `yaml:"skip,omitempty" json:"skip,omitempty"`
}

// LoadTasks loads a task list file. The file is a YAML or JSON sequence
// of task objects.
func LoadTasks(path string) ([]Task, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided task file
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i, t := range tasks {
		if t.Task == "" {
			return nil, fmt.Errorf("%s: task %d has no name", path, i)
		}
		if t.Details == "" {
			return nil, fmt.Errorf("%s: task %q has no details", path, t.Task)
		}
	}
	return tasks, nil
}
