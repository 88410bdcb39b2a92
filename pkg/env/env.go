// Package env reads process environment variables with defaults, for the few
// spots that run before the typed config is loaded.
package env

import "os"

// Get returns the named variable's value, or fallback when it is unset or
// empty.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
