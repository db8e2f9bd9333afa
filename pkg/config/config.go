// Package config provides shared configuration helpers for gpoddb tools.
package config

import "os"

// DefaultMountpoint is the fallback device mountpoint used when
// GPODDB_MOUNTPOINT is not set.
const DefaultMountpoint = "/mnt/ipod"

// Mountpoint returns the device mountpoint from the GPODDB_MOUNTPOINT
// environment variable, falling back to DefaultMountpoint when unset.
func Mountpoint() string {
	if v := os.Getenv("GPODDB_MOUNTPOINT"); v != "" {
		return v
	}
	return DefaultMountpoint
}

// Env returns the value of the environment variable key, or def if unset.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
