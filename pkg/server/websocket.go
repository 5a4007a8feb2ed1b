package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/internal/errors"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/protocol"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/snapshot"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// handleWebSocket streams snapshots in and reports out until the client
// disconnects or the session is closed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	binary := r.URL.Query().Get("format") == "binary"

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		s.logger.Warn("websocket upgrade failed", "session_id", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.config.MaxSnapshotBytes)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(conn, done)

	s.logger.Debug("websocket connected", "session_id", sess.ID, "binary", binary)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "session_id", sess.ID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if msgType != websocket.TextMessage {
			if !s.writeWSError(conn, errors.New("E302").WithDetail("Snapshots must be sent as text messages.")) {
				return
			}
			continue
		}

		report, err := s.checkMessage(sess, data)
		if err != nil {
			if err == errSessionClosed {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if !s.writeWSError(conn, err) {
				return
			}
			continue
		}
		if !s.writeWSReport(conn, report, binary) {
			return
		}
	}
}

func (s *Server) checkMessage(sess *Session, data []byte) (*protocol.Report, error) {
	items, err := snapshot.Decode(data, true)
	if err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	return sess.Check(items)
}

// pingLoop writes pings until done is closed. WriteControl may run
// concurrently with WriteMessage.
func (s *Server) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeWSReport(conn *websocket.Conn, report *protocol.Report, binary bool) bool {
	var (
		msgType int
		data    []byte
		err     error
	)
	if binary {
		msgType = websocket.BinaryMessage
		data, err = protocol.EncodeOperations(report.Operations)
	} else {
		msgType = websocket.TextMessage
		data, err = protocol.EncodeJSON(report)
	}
	if err != nil {
		return s.writeWSError(conn, err)
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(msgType, data); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
		return false
	}
	if binary {
		s.countReport("websocket", "binary")
	} else {
		s.countReport("websocket", "json")
	}
	return true
}

func (s *Server) writeWSError(conn *websocket.Conn, err error) bool {
	data, merr := json.Marshal(errorResponse{Error: errors.Classify(err)})
	if merr != nil {
		return false
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, data) == nil
}
