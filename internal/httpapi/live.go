package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/aretw0/notebox/pkg/notes"
)

const writeTimeout = 10 * time.Second

func (s *Server) handleLiveList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := s.notes.LiveQuery(ctx, scope(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer sub.Unsubscribe()
	stream(s, w, r, cancel, sub)
}

func (s *Server) handleLiveOne(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := s.notes.LiveQueryOne(ctx, scope(r), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer sub.Unsubscribe()
	stream(s, w, r, cancel, sub)
}

// stream upgrades the request and writes one JSON text frame per
// emission. A closed socket cancels the subscription.
func stream[T any](s *Server, w http.ResponseWriter, r *http.Request, cancel context.CancelFunc, sub *notes.Subscription[T]) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The read side only watches for the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for v := range sub.Updates() {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(v); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := sub.Err(); err != nil {
		msg = websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error())
	}
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
