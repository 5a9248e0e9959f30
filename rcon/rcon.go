// Package rcon implements the Source RCON protocol over a persistent TCP
// connection. Each session issues one command at a time; callers are
// serialized on the session mutex rather than multiplexed by request id,
// matching the behavior the rest of the system expects.
package rcon

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	packetTypeAuth          int32 = 3
	packetTypeExecCommand   int32 = 2
	packetTypeAuthResponse  int32 = 2
	packetTypeResponseValue int32 = 0

	// Body limit from the Source RCON spec; anything larger is a framing error.
	maxPacketSize = 4096 + 10
)

const (
	// HandshakeTimeout bounds the TCP connect plus auth exchange.
	HandshakeTimeout = 10 * time.Second
	// CommandTimeout bounds a single request/response round trip.
	CommandTimeout = 5 * time.Second
)

var (
	// ErrAuthFailed indicates the server rejected the password during handshake.
	ErrAuthFailed = errors.New("rcon: authentication failed")
	// ErrTimeout indicates no response arrived within the command timeout.
	// The session stays open; a slow command does not imply a dead session.
	ErrTimeout = errors.New("rcon: command timed out")
	// ErrClosed indicates the session has been closed, either explicitly or
	// after a transport-level failure.
	ErrClosed = errors.New("rcon: session closed")
)

// Session is a live RCON connection to a single game server.
// Safe for concurrent use; commands are executed one at a time.
type Session struct {
	mu     sync.Mutex
	conn   net.Conn
	addr   string
	nextID int32
	closed bool
}

// Dial opens a TCP connection to address and performs the auth handshake
// with the given password. The whole exchange is bounded by HandshakeTimeout.
func Dial(ctx context.Context, address, password string) (*Session, error) {
	dialer := net.Dialer{Timeout: HandshakeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("rcon: failed to connect to %s: %w", address, err)
	}

	s := &Session{
		conn:   conn,
		addr:   address,
		nextID: 1,
	}

	if err := s.authenticate(password); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *Session) authenticate(password string) error {
	if err := s.conn.SetDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return fmt.Errorf("rcon: failed to set handshake deadline: %w", err)
	}
	defer s.conn.SetDeadline(time.Time{})

	reqID := s.nextID
	s.nextID++

	if err := writePacket(s.conn, reqID, packetTypeAuth, password); err != nil {
		return fmt.Errorf("rcon: failed to send auth request: %w", err)
	}

	// Some servers send an empty RESPONSE_VALUE before the auth response;
	// keep reading until the auth response arrives.
	for {
		id, typ, _, err := readPacket(s.conn)
		if err != nil {
			return fmt.Errorf("rcon: failed to read auth response: %w", err)
		}
		if typ != packetTypeAuthResponse {
			continue
		}
		if id == -1 {
			return ErrAuthFailed
		}
		if id != reqID {
			return fmt.Errorf("rcon: unexpected auth response id %d", id)
		}
		return nil
	}
}

// Execute sends a command and waits for its response. At most one command is
// in flight per session; concurrent callers queue on the session mutex.
// A timeout surfaces as ErrTimeout and leaves the session open; any other
// transport failure closes the session.
func (s *Session) Execute(ctx context.Context, command string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reqID := s.nextID
	s.nextID++

	deadline := time.Now().Add(CommandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("rcon: failed to set command deadline: %w", err)
	}
	defer s.conn.SetDeadline(time.Time{})

	if err := writePacket(s.conn, reqID, packetTypeExecCommand, command); err != nil {
		return "", s.transportError("send command", err)
	}

	// Discard stale frames (late responses from a previously timed-out
	// command) until the frame for this request arrives.
	for {
		id, typ, body, err := readPacket(s.conn)
		if err != nil {
			return "", s.transportError("read response", err)
		}
		if typ != packetTypeResponseValue || id < reqID {
			continue
		}
		return body, nil
	}
}

// transportError classifies a transport failure. Timeouts keep the session
// alive; everything else poisons it.
func (s *Session) transportError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	s.closed = true
	s.conn.Close()
	return fmt.Errorf("rcon: failed to %s on %s: %w", op, s.addr, err)
}

// Addr returns the remote address this session is connected to.
func (s *Session) Addr() string {
	return s.addr
}

// Close tears down the session. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// writePacket frames and writes a single RCON packet: little-endian int32
// length, int32 id, int32 type, NUL-terminated body, trailing NUL.
func writePacket(w io.Writer, id, typ int32, body string) error {
	size := int32(4 + 4 + len(body) + 2)
	buf := make([]byte, 0, 4+size)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(typ))
	buf = append(buf, body...)
	buf = append(buf, 0, 0)

	_, err := w.Write(buf)
	return err
}

// readPacket reads and decodes a single RCON packet.
func readPacket(r io.Reader) (id, typ int32, body string, err error) {
	var sizeBuf [4]byte
	if _, err = io.ReadFull(r, sizeBuf[:]); err != nil {
		return 0, 0, "", err
	}

	size := int32(binary.LittleEndian.Uint32(sizeBuf[:]))
	if size < 10 || size > maxPacketSize {
		return 0, 0, "", fmt.Errorf("invalid packet size %d", size)
	}

	payload := make([]byte, size)
	if _, err = io.ReadFull(r, payload); err != nil {
		return 0, 0, "", err
	}

	id = int32(binary.LittleEndian.Uint32(payload[0:4]))
	typ = int32(binary.LittleEndian.Uint32(payload[4:8]))
	body = string(payload[8 : size-2])

	return id, typ, body, nil
}
