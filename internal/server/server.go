package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"mailgate/internal/auth"
	"mailgate/internal/ews"
)

// acceptPollInterval bounds how long a shutdown request can go unobserved by
// the accept loop.
const acceptPollInterval = 250 * time.Millisecond

// Backend is the protocol-neutral surface of the translation client. The
// session engine depends only on this interface, which also lets tests
// substitute a call-counting stub.
type Backend interface {
	ListFolders(ctx context.Context, reference, pattern string) ([]string, error)
	SelectFolder(ctx context.Context, name string) (*ews.FolderStats, error)
	FetchMessages(ctx context.Context, folder, sequenceSet, items string) ([]ews.Message, error)
}

// BackendFactory builds an authenticated Backend for one login attempt. The
// factory performs the remote authentication handshake; an error means the
// login is rejected.
type BackendFactory func(ctx context.Context, creds auth.Credentials) (Backend, error)

// IMAPServer accepts IMAP connections and runs one session engine per
// connection.
type IMAPServer struct {
	newBackend BackendFactory
	logger     *slog.Logger

	wg sync.WaitGroup
}

func NewIMAPServer(newBackend BackendFactory, logger *slog.Logger) *IMAPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &IMAPServer{newBackend: newBackend, logger: logger.With("protocol", "imap")}
}

func (s *IMAPServer) Name() string { return "imap" }

// Serve accepts connections until ctx is cancelled, then stops accepting and
// waits for in-flight sessions to finish their current command. The accept
// loop uses a short deadline so cancellation is observed between accepts
// without blocking.
func (s *IMAPServer) Serve(ctx context.Context, ln net.Listener) error {
	defer s.wg.Wait()

	for {
		if ctx.Err() != nil {
			s.logger.Info("shutdown requested, draining connections")
			return nil
		}

		if tcp, ok := ln.(*net.TCPListener); ok {
			if err := tcp.SetDeadline(time.Now().Add(acceptPollInterval)); err != nil {
				return fmt.Errorf("setting accept deadline: %w", err)
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		s.logger.Info("new connection", "remote", conn.RemoteAddr())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.HandleConnection(ctx, conn)
		}()
	}
}

// HandleConnection runs the session engine for one accepted connection.
func (s *IMAPServer) HandleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	c := &sessionConn{
		srv:    s,
		conn:   conn,
		logger: s.logger.With("remote", remoteAddr(conn)),
	}

	c.reply("* OK [CAPABILITY IMAP4rev1 LITERAL+ SASL-IR LOGIN-REFERRALS AUTH=PLAIN AUTH=LOGIN] mailgate IMAP ready")
	c.run(ctx)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}

// sanitizeForLog masks literal payloads so message bodies never land in the
// log.
func sanitizeForLog(response string) string {
	if idx := strings.Index(response, "{"); idx != -1 {
		if end := strings.Index(response[idx:], "}"); end != -1 {
			return response[:idx+end+1] + " [LITERAL OMITTED]"
		}
	}
	if len(response) > 512 {
		return response[:512] + fmt.Sprintf("... [TRUNCATED - %d total bytes]", len(response))
	}
	return response
}
