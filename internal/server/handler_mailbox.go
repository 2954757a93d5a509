package server

import (
	"context"
	"fmt"
	"strings"

	"mailgate/internal/models"
	"mailgate/internal/server/utils"
)

func (c *sessionConn) handleList(ctx context.Context, tag, args string) {
	reference := ""
	pattern := "*"
	if args != "" {
		listParts := strings.SplitN(args, " ", 2)
		reference = utils.ParseQuotedString(listParts[0])
		if len(listParts) == 2 {
			pattern = utils.ParseQuotedString(listParts[1])
		}
	}

	folders, err := c.backend.ListFolders(ctx, reference, pattern)
	if err != nil {
		c.logger.Error("LIST failed", "reference", reference, "pattern", pattern, "error", err)
		c.reply(tag + " NO LIST failed")
		return
	}

	for _, folder := range folders {
		c.reply(fmt.Sprintf(`* LIST (\HasNoChildren) "/" "%s"`, folder))
	}
	c.reply(tag + " OK LIST completed")
}

func (c *sessionConn) handleSelect(ctx context.Context, tag, args string) {
	if args == "" {
		c.reply(tag + " BAD Missing mailbox name")
		return
	}
	mailbox := utils.ParseQuotedString(args)

	stats, err := c.backend.SelectFolder(ctx, mailbox)
	if err != nil {
		c.logger.Error("SELECT failed", "mailbox", mailbox, "error", err)
		c.reply(tag + " NO SELECT failed")
		return
	}

	c.session.State = models.StateSelected
	c.session.SelectedFolder = mailbox
	c.session.LastMessageCount = int(stats.Exists)
	c.session.UIDValidity = stats.UIDValidity
	c.session.UIDNext = stats.UIDNext

	c.reply(fmt.Sprintf("* %d EXISTS", stats.Exists))
	c.reply(fmt.Sprintf("* %d RECENT", stats.Recent))
	c.reply(fmt.Sprintf("* OK [UNSEEN %d] First unseen message", stats.Unseen))
	c.reply(fmt.Sprintf("* OK [UIDVALIDITY %d] UIDs valid", stats.UIDValidity))
	c.reply(fmt.Sprintf("* OK [UIDNEXT %d] Predicted next UID", stats.UIDNext))
	c.reply(`* FLAGS (\Answered \Flagged \Deleted \Seen \Draft)`)
	c.reply(`* OK [PERMANENTFLAGS (\Answered \Flagged \Deleted \Seen \Draft \*)]`)
	c.reply(tag + " OK [READ-WRITE] SELECT completed")
}
