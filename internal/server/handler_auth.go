package server

import (
	"context"
	"strings"

	"mailgate/internal/auth"
	"mailgate/internal/models"
	"mailgate/internal/server/utils"
)

func (c *sessionConn) handleCapability(ctx context.Context, tag, args string) {
	c.reply("* CAPABILITY IMAP4rev1 LITERAL+ SASL-IR LOGIN-REFERRALS AUTH=PLAIN AUTH=LOGIN")
	c.reply(tag + " OK CAPABILITY completed")
}

func (c *sessionConn) handleNoop(ctx context.Context, tag, args string) {
	c.reply(tag + " OK NOOP completed")
}

// handleLogin constructs credentials and a translation client bound to the
// configured remote endpoint. The factory performs the authentication
// handshake; failure leaves the session state unchanged.
func (c *sessionConn) handleLogin(ctx context.Context, tag, args string) {
	if args == "" {
		c.reply(tag + " BAD Missing credentials")
		return
	}

	credParts := strings.SplitN(args, " ", 2)
	if len(credParts) != 2 {
		c.reply(tag + " BAD Invalid credentials format")
		return
	}

	creds := auth.Credentials{
		Username: utils.ParseQuotedString(credParts[0]),
		Password: utils.ParseQuotedString(credParts[1]),
	}

	backend, err := c.srv.newBackend(ctx, creds)
	if err != nil {
		c.logger.Error("authentication failed", "username", creds.Username, "error", err)
		c.reply(tag + " NO LOGIN failed")
		return
	}

	c.backend = backend
	c.session.State = models.StateAuthenticated
	c.session.Username = creds.Username
	c.logger.Info("login completed", "username", creds.Username)
	c.reply(tag + " OK LOGIN completed")
}
