package ws

import (
	"encoding/json"
	"strings"
	"sync/atomic"

	"swipehire/internal/protocol"
)

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// NotifyCatalogUpdated tells connected clients that an import added or
// refreshed jobs. Rankings are not recomputed; clients pick the new jobs up
// on their next upload or preference change.
func NotifyCatalogUpdated(source string, count int) {
	h := defaultHub.Load()
	if h == nil || count <= 0 {
		return
	}

	b, err := json.Marshal(protocol.CatalogUpdated(strings.TrimSpace(source), count))
	if err != nil {
		return
	}
	h.Broadcast(b)
}
