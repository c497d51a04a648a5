package env

import (
	"os"
	"strings"
)

// Get reads an environment variable, returning fallback when it is unset or
// blank. Kept for spots that need a value before config has loaded.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
