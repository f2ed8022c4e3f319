package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadEnvFile reads a .env file and exports every KEY=VALUE line that is
// not already set in the process environment. Missing files are fine.
func LoadEnvFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read env file: %w", err)
	}

	for _, line := range strings.Split(string(raw), "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s from env file: %w", key, err)
		}
	}
	return nil
}

// PersistEnvVar writes KEY=VALUE into the .env file, replacing the first
// existing assignment of KEY and otherwise appending. Comments, blank
// lines, and the order of other assignments are preserved.
func PersistEnvVar(path, key, value string) error {
	var lines []string
	if raw, err := os.ReadFile(path); err == nil {
		lines = strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
		if len(lines) == 1 && lines[0] == "" {
			lines = nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read env file: %w", err)
	}

	updated := false
	out := make([]string, 0, len(lines)+2)
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			out = append(out, line)
			continue
		}
		currentKey, _, _ := strings.Cut(line, "=")
		if strings.TrimSpace(currentKey) == key && !updated {
			out = append(out, key+"="+value)
			updated = true
			continue
		}
		out = append(out, line)
	}

	if !updated {
		if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, key+"="+value)
	}

	content := strings.Join(out, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}
