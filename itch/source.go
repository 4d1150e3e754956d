package itch

import (
	"context"
	"io"
	"time"

	"nhooyr.io/websocket"
)

// wsSource adapts a websocket connection relaying the framed feed to an
// io.ReadCloser. Each binary websocket message is a chunk of the same
// length-prefixed byte stream; chunk boundaries carry no meaning, the
// frame reader re-frames as usual.
type wsSource struct {
	conn *websocket.Conn
	ctx  context.Context
	buf  []byte
}

// DialSource connects to a websocket endpoint serving the framed feed and
// returns a byte source for NewStream or NewFrameReader. The context
// governs the whole lifetime of the connection, not just the dial.
func DialSource(ctx context.Context, u string) (io.ReadCloser, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, u, &websocket.DialOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	})
	if err != nil {
		return nil, err
	}
	// The feed is one long byte stream, not individual messages.
	conn.SetReadLimit(maxPayloadLen)
	return &wsSource{conn: conn, ctx: ctx}, nil
}

func (s *wsSource) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		typ, data, err := s.conn.Read(s.ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return 0, io.EOF
			}
			return 0, err
		}
		if typ != websocket.MessageBinary {
			continue
		}
		s.buf = data
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *wsSource) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
