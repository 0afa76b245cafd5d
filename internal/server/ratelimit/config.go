package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route pattern. Patterns use the router's segment syntax;
// a "{...}" segment matches any single path segment.
type Rule struct {
	Pattern string
	Method  string
	Limit   int
	Window  time.Duration
	Burst   int
}

// Config holds limiter settings. Exempt and Blocked are client IP sets.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Exempt          map[string]bool
	Blocked         map[string]bool
	Rules           []Rule
}

// DefaultConfig returns the built-in limits with no environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Exempt:          map[string]bool{},
		Blocked:         map[string]bool{},
		Rules:           defaultRules(),
	}
}

// LoadConfig builds limiter settings from RATE_LIMIT_* environment
// variables, falling back to defaults.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool("RATE_LIMIT_ENABLED", true)
	if !cfg.Enabled {
		return cfg
	}
	cfg.DefaultLimit = envInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = envDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = envDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Exempt = parseIPSet(os.Getenv("RATE_LIMIT_EXEMPT"))
	cfg.Blocked = parseIPSet(os.Getenv("RATE_LIMIT_BLOCKED"))
	return cfg
}

// defaultRules tiers the routes by cost. Optimization runs call the LLM
// and the renderer, job applies hit external boards, so both get the
// strictest limits.
func defaultRules() []Rule {
	return []Rule{
		{Pattern: "/sessions/{id}/optimize", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Pattern: "/sessions/{id}/optimize/stream", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Pattern: "/jobs/apply", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},

		{Pattern: "/jobs/search", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Pattern: "/sessions/{id}/cv", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "/sessions/{id}/job-description", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "/sessions", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Health checks are unlimited.
		{Pattern: "/health", Method: "GET", Limit: 0},
	}
}

// match finds the rule for a path and method, falling back to the
// default limit.
func (c *Config) match(path, method string) Rule {
	for _, rule := range c.Rules {
		if rule.Method == method && patternMatches(rule.Pattern, path) {
			return rule
		}
	}
	return Rule{
		Pattern: "*",
		Method:  method,
		Limit:   c.DefaultLimit,
		Window:  c.DefaultWindow,
		Burst:   c.DefaultLimit,
	}
}

// patternMatches compares a route pattern to a concrete path segment by
// segment, treating "{...}" segments as wildcards.
func patternMatches(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	rs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(rs) {
		return false
	}
	for i, seg := range ps {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			continue
		}
		if seg != rs[i] {
			return false
		}
	}
	return true
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseIPSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
