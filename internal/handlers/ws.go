package handlers

import (
	"net/http"

	"fintrack/internal/websocket"
)

func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	websocket.ServeWS(w, r, h.hub, ownerID)
}
