// Package prompts provides the embedded LLM prompt skeletons and the
// assembler that binds session inputs into a final prompt. Skeletons are
// stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

var slotPattern = regexp.MustCompile(`\{\{\.[A-Za-z]+\}\}`)

// Get retrieves a prompt skeleton by filename and key.
// The filename should not include a path (e.g. "optimization.json").
func Get(filename, key string) (string, error) {
	skeletons, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	skeleton, exists := skeletons[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return skeleton, nil
}

// MustGet retrieves a prompt skeleton, panicking if it is missing. Use for
// prompts that are required at initialization time.
func MustGet(filename, key string) string {
	skeleton, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return skeleton
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Placeholders without a corresponding entry in data are left in place.
func Format(skeleton string, data map[string]string) string {
	result := skeleton
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// FormatStrict is Format plus a completeness check: if any {{.Key}}
// placeholder survives substitution the call fails naming the first
// unresolved slot, so a half-bound prompt never reaches the model.
func FormatStrict(skeleton string, data map[string]string) (string, error) {
	result := Format(skeleton, data)
	if leftover := slotPattern.FindString(result); leftover != "" {
		slot := strings.TrimSuffix(strings.TrimPrefix(leftover, "{{."), "}}")
		return "", &UnresolvedSlotError{Slot: slot}
	}
	return result, nil
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if skeletons, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return skeletons, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var skeletons map[string]string
	if err := json.Unmarshal(data, &skeletons); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = skeletons
	cacheMu.Unlock()

	return skeletons, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}
