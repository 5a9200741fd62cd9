package stubserver

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"betpanel-client/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans push events out to the websocket connections of each user.
type hub struct {
	mu    sync.Mutex
	conns map[int64][]*websocket.Conn
}

func newHub() *hub {
	return &hub{conns: make(map[int64][]*websocket.Conn)}
}

func (h *hub) add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[userID] = append(h.conns[userID], conn)
	h.mu.Unlock()
}

func (h *hub) remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	list := h.conns[userID]
	for i, c := range list {
		if c == conn {
			h.conns[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
}

type pushEvent struct {
	Type    string         `json:"type"`
	Message models.Message `json:"message"`
}

// pushMessage delivers a message.new event to both parties.
func (h *hub) pushMessage(msg models.Message) {
	ev := pushEvent{Type: "message.new", Message: msg}
	h.mu.Lock()
	targets := append([]*websocket.Conn{}, h.conns[msg.SenderID]...)
	targets = append(targets, h.conns[msg.ReceiverID]...)
	h.mu.Unlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("ws push failed")
		}
	}
}
