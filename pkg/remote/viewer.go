package remote

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/protocol"
)

// viewer is one connected WebSocket client. send is closed by the hub when
// the viewer is removed; the write pump then closes the connection.
type viewer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// ServeWS upgrades the request and streams the document to the new viewer
// until either side closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", rerrors.FromError(err, "N001"))
		return
	}

	v := &viewer{
		id:   newViewerID(),
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
	}
	if err := h.join(r.Context(), v); err != nil {
		h.logger.Warn("viewer join failed", "viewer", v.id, "error", err)
		conn.Close()
		return
	}

	go h.writePump(v)
	h.readPump(v)
}

// readPump reads viewer frames until the connection fails.
func (h *Hub) readPump(v *viewer) {
	defer h.remove(v, false)

	v.conn.SetReadLimit(h.config.MaxMessageSize)
	v.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	})

	for {
		_, msg, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "viewer", v.id, "error", err)
			}
			return
		}
		v.conn.SetReadDeadline(time.Now().Add(h.config.PongWait))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			h.reject(v, rerrors.FromError(err, "P001"))
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(frame.Payload)
			if err != nil {
				h.reject(v, rerrors.FromError(err, "P001"))
				continue
			}
			h.dispatch(v, ev)

		case protocol.FramePing:
			h.send(v, protocol.NewFrame(protocol.FramePong, frame.Payload).Encode())

		case protocol.FramePong:

		default:
			h.reject(v, rerrors.New("P002").WithDetail("frame type "+frame.Type.String()))
		}
	}
}

func (h *Hub) reject(v *viewer, err *rerrors.ReactorError) {
	h.logger.Warn("bad frame from viewer", "viewer", v.id, "code", err.Code, "error", err)
	h.send(v, errorFrame(err, false))
}

// writePump drains v.send and pings the viewer. It owns all writes to the
// connection.
func (h *Hub) writePump(v *viewer) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case data, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := v.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.logger.Debug("write failed", "viewer", v.id, "error", err)
				h.remove(v, false)
				return
			}
			h.observer.FrameSent(len(data))

		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(v, false)
				return
			}
		}
	}
}
