package antivirus

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	defaultClamAVTimeout = 30 * time.Second
	pingTimeout          = 5 * time.Second
	// clamd rejects streams whose chunks exceed StreamMaxLength; keep
	// chunks well below its 25MB default.
	streamChunkSize = 1 << 20
)

// ClamAVScanner talks to a clamd daemon over TCP ("host:3310") or a unix
// socket ("/var/run/clamav/clamd.sock") using the INSTREAM command.
type ClamAVScanner struct {
	address string
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = defaultClamAVTimeout
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string { return "clamav" }

func (c *ClamAVScanner) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

func (c *ClamAVScanner) dial(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network(), c.address)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)
	return conn, nil
}

// Available sends PING and expects PONG.
func (c *ClamAVScanner) Available(ctx context.Context) bool {
	conn, err := c.dial(ctx, pingTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("zPING\x00")); err != nil {
		return false
	}
	reply, err := readReply(conn)
	return err == nil && reply == "PONG"
}

func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	reply, err := c.instream(ctx, data)
	if err != nil {
		result.Infected = true
		result.Error = fmt.Errorf("clamav scan of %q: %w", filename, err)
		return result
	}

	// Replies look like "stream: OK", "stream: Eicar-Signature FOUND" or
	// "stream: <reason> ERROR".
	verdict := strings.TrimSpace(strings.TrimPrefix(reply, "stream:"))
	switch {
	case verdict == "OK":
	case strings.HasSuffix(verdict, " FOUND"):
		result.Infected = true
		result.ThreatName = strings.TrimSuffix(verdict, " FOUND")
	default:
		result.Infected = true
		result.Error = fmt.Errorf("clamav scan of %q: %s", filename, verdict)
	}
	return result
}

func (c *ClamAVScanner) instream(ctx context.Context, data io.Reader) (string, error) {
	conn, err := c.dial(ctx, c.timeout)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString("zINSTREAM\x00"); err != nil {
		return "", err
	}

	buf := make([]byte, streamChunkSize)
	var size [4]byte
	for {
		n, rerr := io.ReadFull(data, buf)
		if n > 0 {
			binary.BigEndian.PutUint32(size[:], uint32(n))
			if _, err := w.Write(size[:]); err != nil {
				return "", err
			}
			if _, err := w.Write(buf[:n]); err != nil {
				return "", err
			}
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("read upload: %w", rerr)
		}
	}

	// A zero-length chunk ends the stream.
	binary.BigEndian.PutUint32(size[:], 0)
	if _, err := w.Write(size[:]); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return readReply(conn)
}

// readReply reads one NUL-terminated clamd reply.
func readReply(r io.Reader) (string, error) {
	reply, err := bufio.NewReader(r).ReadString(0)
	if err != nil && !(errors.Is(err, io.EOF) && reply != "") {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimRight(reply, "\x00\n"), nil
}
