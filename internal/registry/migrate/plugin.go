// Package migrate holds the registry of datastore migrators. Store
// plugins register a migrator alongside their store so that both the
// serve and migrate subcommands can prepare the conversation and
// knowledge-base collections before taking traffic.
package migrate

import (
	"context"
	"fmt"
	"sort"
)

// Migrator prepares the schema of one backend: collections, indexes.
type Migrator interface {
	Name() string
	Migrate(ctx context.Context) error
}

// Plugin pairs a migrator with an order for deterministic execution.
type Plugin struct {
	Order    int
	Migrator Migrator
}

var plugins []Plugin

// Register adds a migration plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// RunAll executes all registered migrators sorted by Order. Migrators for
// backends other than the configured one are expected to no-op.
func RunAll(ctx context.Context) error {
	sorted := make([]Plugin, len(plugins))
	copy(sorted, plugins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	for _, p := range sorted {
		if err := p.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migration %s failed: %w", p.Migrator.Name(), err)
		}
	}
	return nil
}
