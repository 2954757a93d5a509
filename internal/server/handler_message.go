package server

import (
	"context"
	"fmt"
	"strings"

	"mailgate/internal/server/utils"
)

// handleFetch validates the sequence set locally before consulting the
// translation client, so malformed input never costs a remote round trip.
func (c *sessionConn) handleFetch(ctx context.Context, tag, args string) {
	if args == "" {
		c.reply(tag + " BAD Missing fetch arguments")
		return
	}

	fetchParts := strings.SplitN(args, " ", 2)
	if len(fetchParts) != 2 {
		c.reply(tag + " BAD Invalid fetch arguments")
		return
	}

	sequenceSet := fetchParts[0]
	items := fetchParts[1]

	if err := utils.CheckSequenceSet(sequenceSet); err != nil {
		c.reply(tag + " BAD Invalid sequence set")
		return
	}

	messages, err := c.backend.FetchMessages(ctx, c.session.SelectedFolder, sequenceSet, items)
	if err != nil {
		c.logger.Error("FETCH failed", "mailbox", c.session.SelectedFolder, "sequence_set", sequenceSet, "error", err)
		c.reply(tag + " NO FETCH failed")
		return
	}

	for _, msg := range messages {
		c.reply(fmt.Sprintf("* %d FETCH %s", msg.Sequence, msg.Data))
	}
	c.reply(tag + " OK FETCH completed")
}
