package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// loadedPrompts holds prompt content read from files at startup. Files are
// read once; later edits need a restart.
type loadedPrompts struct {
	system string
	tasks  map[string]string
}

// loadPromptsFromFiles reads every configured prompt file
func (c *Config) loadPromptsFromFiles() error {
	if err := c.validatePromptFiles(); err != nil {
		return err
	}

	loaded := loadedPrompts{tasks: make(map[string]string)}

	if c.Prompts.SystemFile != "" {
		content, err := loadPromptFromFile(c.Prompts.SystemFile, "system")
		if err != nil {
			return err
		}
		loaded.system = content
	}

	for _, name := range c.Prompts.taskNames() {
		file := c.Prompts.Tasks[name].File
		if file == "" {
			continue
		}
		content, err := loadPromptFromFile(file, name)
		if err != nil {
			return err
		}
		loaded.tasks[name] = content
	}

	c.Prompts.loaded = loaded
	if n := len(c.Prompts.Overrides()); n > 0 {
		log.Printf("[CONFIG] Task prompt overrides active: %d", n)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file, rejecting empty content
func loadPromptFromFile(filePath, prompt string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path for %s prompt file '%s': %w", prompt, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", prompt, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", prompt, absPath)
	}

	log.Printf("[CONFIG] Loaded %s prompt from %s (%d characters)", prompt, absPath, len(trimmed))
	return trimmed, nil
}

// validatePromptFiles reports every missing prompt file at once
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, prompt string) {
		if filePath == "" {
			return
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", prompt, filePath))
			return
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", prompt, absPath))
		}
	}

	validateFile(c.Prompts.SystemFile, "system")
	for _, name := range c.Prompts.taskNames() {
		validateFile(c.Prompts.Tasks[name].File, name)
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

func (p *PromptConfig) taskNames() []string {
	names := make([]string, 0, len(p.Tasks))
	for name := range p.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SystemInstruction returns the configured system instruction or fallback.
func (p *PromptConfig) SystemInstruction(fallback string) string {
	return resolvePrompt(p.loaded.system, p.System, fallback)
}

// TaskTemplate returns the override template for a task, or "" when the
// built-in template should be used.
func (p *PromptConfig) TaskTemplate(name string) string {
	return resolvePrompt(p.loaded.tasks[name], p.Tasks[name].Template, "")
}

// Overrides returns every task template override keyed by task name.
func (p *PromptConfig) Overrides() map[string]string {
	out := make(map[string]string)
	for _, name := range p.taskNames() {
		if tmpl := p.TaskTemplate(name); tmpl != "" {
			out[name] = tmpl
		}
	}
	return out
}

// resolvePrompt picks a prompt by priority: file, then config, then default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
