package handler

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

var (
	feedClients = make(map[uint]map[*websocket.Conn]bool)
	feedMu      sync.Mutex
)

// CheckinFeed: dashboard tại cửa subscribe theo eventId, nhận mọi CheckinResult
// ngay khi được phán xử. Event id lấy từ Locals do validate.CheckinFeed đặt
// sau khi đã check organization — không tin params thô.
func CheckinFeed(c *websocket.Conn) {
	eventId, ok := c.Locals("feedEventId").(uint)
	if !ok {
		c.Close()
		return
	}

	defer func() {
		feedMu.Lock()
		if feedClients[eventId] != nil {
			delete(feedClients[eventId], c)
		}
		feedMu.Unlock()
		c.Close()
	}()

	feedMu.Lock()
	if feedClients[eventId] == nil {
		feedClients[eventId] = make(map[*websocket.Conn]bool)
	}
	feedClients[eventId][c] = true
	feedMu.Unlock()

	// Giữ connection, chỉ đọc để phát hiện disconnect
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

func BroadcastCheckin(eventId uint, payload interface{}) {
	feedMu.Lock()
	defer feedMu.Unlock()

	for conn := range feedClients[eventId] {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("failed to push checkin to feed client: %v", err)
			conn.Close()
			delete(feedClients[eventId], conn)
		}
	}
}
