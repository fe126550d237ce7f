package testsupport

import (
	"testing"

	"genecrawler/internal/config"
	"genecrawler/internal/matchstore"
)

// MustOpenStore opens a matchstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *matchstore.Store {
	t.Helper()

	store, err := matchstore.Open(cfg)
	if err != nil {
		t.Fatalf("matchstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
