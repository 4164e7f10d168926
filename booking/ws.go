package booking

import (
	"encoding/json"
	"net/http"
	"sync"

	"dorax/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

// HandleWS subscribes a client to live status updates for one booking
// (key "booking_<id>") or one merchant's bookings (key "merchant_<id>").
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	scope := ps.ByName("scope")
	id := ps.ByName("id")
	if (scope != "booking" && scope != "merchant") || id == "" {
		http.Error(w, "invalid subscription", http.StatusBadRequest)
		return
	}
	key := scope + "_" + id

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[key] = append(subscribers[key], conn)
	mu.Unlock()

	for {
		// Keep the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	mu.Lock()
	conns := subscribers[key]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[key] = newList
	mu.Unlock()

	conn.Close()
}

// BroadcastEvent pushes a lifecycle event to the booking's and the merchant's
// subscribers.
func BroadcastEvent(e models.BookingEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	broadcast("booking_"+e.BookingID, data)
	if e.MerchantID != "" {
		broadcast("merchant_"+e.MerchantID, data)
	}
}

func broadcast(key string, val []byte) {
	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[key]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	subscribers[key] = newList
}
