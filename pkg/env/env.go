// Package env provides raw environment lookups for the few places that run
// before configuration has been parsed.
package env

import "os"

// Get reads key from the environment, falling back when unset or empty.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
