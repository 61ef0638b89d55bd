package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/yourorg/meteo-alertes/internal/model"
	"github.com/yourorg/meteo-alertes/internal/server/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream carries the same public state as GET /api/alert, so any
	// origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWs upgrades a public viewer connection and registers it with the
// hub. The viewer receives the current record on every publish/disable.
func ServeWs(h *hub.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket connection for %s: %v", r.RemoteAddr, err)
		return
	}

	client := &hub.Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan model.AlertRecord, 8),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
