// Package seeders fills a store with demo data.
//
// Seeders register themselves from init():
//
//	func init() {
//	    seeders.Register("users", SeedUsers)
//	}
//
// Then run via CLI: plantnet seed
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/plantnet/plantnet/app/repositories"
)

// SeederFunc is the signature for a seed function. Seeders must be safe to
// run more than once.
type SeederFunc func(ctx context.Context, store *repositories.Store) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order, reporting
// progress to w. It stops on the first error.
func RunAll(ctx context.Context, store *repositories.Store, w io.Writer) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(w, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(w, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, store); err != nil {
			fmt.Fprintln(w, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(w, "done")
	}
	return nil
}
