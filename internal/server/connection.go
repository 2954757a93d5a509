package server

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"mailgate/internal/models"
)

// sessionConn binds one connection's socket, protocol state and translation
// client together for the lifetime of the connection.
type sessionConn struct {
	srv     *IMAPServer
	conn    net.Conn
	logger  *slog.Logger
	session models.Session
	backend Backend
}

type handlerFunc func(c *sessionConn, ctx context.Context, tag, args string)

// commands is the fixed dispatch table: each command carries the minimum
// session state it requires. Commands in a lower state are rejected locally
// before any remote call. LOGOUT is handled in the read loop because it
// terminates it.
var commands = map[string]struct {
	minState models.SessionState
	handler  handlerFunc
}{
	"CAPABILITY": {models.StateNotAuthenticated, (*sessionConn).handleCapability},
	"NOOP":       {models.StateNotAuthenticated, (*sessionConn).handleNoop},
	"LOGIN":      {models.StateNotAuthenticated, (*sessionConn).handleLogin},
	"LIST":       {models.StateAuthenticated, (*sessionConn).handleList},
	"SELECT":     {models.StateAuthenticated, (*sessionConn).handleSelect},
	"FETCH":      {models.StateSelected, (*sessionConn).handleFetch},
}

// run reads command lines until disconnect, LOGOUT or shutdown, processing
// commands strictly sequentially: each command completes, including any
// remote round trip, before the next line is read. A shutdown request is
// observed between commands, never mid-command.
func (c *sessionConn) run(ctx context.Context) {
	reader := bufio.NewReader(c.conn)

	for {
		if ctx.Err() != nil {
			c.reply("* BYE Server shutting down")
			return
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(30 * time.Minute)); err != nil {
			return
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return
			}
			if line == "" {
				return
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		c.logger.Debug("client", "line", redactLine(line))

		// A line that arrived after shutdown is not served.
		if ctx.Err() != nil {
			c.reply("* BYE Server shutting down")
			return
		}

		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			c.reply("* BAD Invalid command")
			continue
		}

		tag := parts[0]
		cmd := strings.ToUpper(parts[1])
		args := ""
		if len(parts) == 3 {
			args = parts[2]
		}

		if cmd == "LOGOUT" {
			c.reply("* BYE IMAP session terminating")
			c.reply(tag + " OK LOGOUT completed")
			return
		}

		entry, ok := commands[cmd]
		if !ok {
			c.reply(tag + " BAD Command not implemented")
			continue
		}

		if c.session.State < entry.minState {
			c.reply(tag + " NO " + stateRequirement(c.session.State))
			continue
		}

		entry.handler(c, ctx, tag, args)
	}
}

func stateRequirement(state models.SessionState) string {
	if state == models.StateNotAuthenticated {
		return "Not authenticated"
	}
	return "No mailbox selected"
}

func (c *sessionConn) reply(response string) {
	c.logger.Debug("server", "line", sanitizeForLog(response))
	_, _ = c.conn.Write([]byte(response + "\r\n"))
}

// redactLine masks LOGIN arguments so credentials never reach the log.
func redactLine(line string) string {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) >= 2 && strings.EqualFold(parts[1], "LOGIN") {
		return parts[0] + " " + parts[1] + " [REDACTED]"
	}
	return line
}
