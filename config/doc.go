// Package config loads circulationd settings from defaults, an optional YAML file and
// OPENSHELF_* environment variables, validates them, and builds PostgreSQL connections.
//
// Environment keys mirror the YAML paths with dots replaced by underscores, e.g.
// OPENSHELF_SWEEPER_SCHEDULE for sweeper.schedule. OPENSHELF_POSTGRES_DSN and
// OPENSHELF_REDIS_ADDR are accepted as short forms.
package config
