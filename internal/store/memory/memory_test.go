package memory

import (
	"testing"

	"fatture/internal/store"
	"fatture/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		return New()
	})
}
