package ews

import (
	"fmt"
	"strings"
	"time"
)

// uidBase anchors the synthetic UID space. EWS item ids are opaque strings,
// so UIDs are derived from the item's position: UID(seq) = uidBase + seq,
// and UIDNEXT = uidBase + exists + 1, keeping SELECT and FETCH coherent.
const uidBase = 1000

// FolderStats are point-in-time counters for one mailbox, computed fresh per
// SELECT and never cached.
type FolderStats struct {
	Exists      uint32
	Recent      uint32
	Unseen      uint32
	UIDValidity uint32
	UIDNext     uint32
}

// Message is one fetched item's pre-rendered wire fragment.
type Message struct {
	Sequence int
	Data     string
}

// parseFetchItems splits a parenthesized FETCH item list into its tokens.
// Keywords are case-sensitive per the protocol grammar.
func parseFetchItems(items string) []string {
	trimmed := strings.TrimFunc(items, func(r rune) bool {
		return r == '(' || r == ')'
	})
	return strings.Fields(trimmed)
}

// renderFetchData builds the parenthesized data list for one message,
// containing only the parts for recognized requested items. Unknown items
// are silently omitted; an empty result means nothing was recognized.
func renderFetchData(seq int, it responseItem, fetchItems []string) string {
	var parts []string
	for _, item := range fetchItems {
		switch {
		case item == "FLAGS":
			parts = append(parts, renderFlags(it))
		case item == "UID":
			parts = append(parts, fmt.Sprintf("UID %d", uidBase+seq))
		case strings.HasPrefix(item, "BODY[HEADER]"):
			parts = append(parts, renderLiteral("BODY[HEADER]", headerBlock(seq, it)))
		case strings.HasPrefix(item, "BODY[TEXT]"):
			parts = append(parts, renderLiteral("BODY[TEXT]", textBlock(it)))
		case item == "BODY[]" || strings.HasPrefix(item, "BODY["):
			parts = append(parts, renderLiteral("BODY[]", headerBlock(seq, it)+textBlock(it)))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func renderFlags(it responseItem) string {
	if it.IsRead {
		return `FLAGS (\Seen)`
	}
	return "FLAGS ()"
}

// renderLiteral prefixes a block with the protocol's {length} literal marker.
// The length counts bytes of the block that follows the CRLF.
func renderLiteral(name, block string) string {
	return fmt.Sprintf("%s {%d}\r\n%s", name, len(block), block)
}

func headerBlock(seq int, it responseItem) string {
	var b strings.Builder
	from := it.From.EmailAddress
	if from == "" {
		from = it.From.Name
	}
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	if to := recipientList(it.To); to != "" {
		fmt.Fprintf(&b, "To: %s\r\n", to)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", it.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", rfc2822Date(it.DateTimeReceived))
	fmt.Fprintf(&b, "Message-ID: <%d.%d@mailgate.local>\r\n", seq, uidBase+seq)
	b.WriteString("\r\n")
	return b.String()
}

func textBlock(it responseItem) string {
	body := it.Body
	if body == "" {
		// FindItem does not return full bodies for every item class; fall
		// back to the subject so BODY[TEXT] is never an empty literal.
		body = it.Subject
	}
	if !strings.HasSuffix(body, "\r\n") {
		body += "\r\n"
	}
	return body
}

func recipientList(recipients []mailboxAddress) string {
	var addrs []string
	for _, r := range recipients {
		if r.EmailAddress != "" {
			addrs = append(addrs, r.EmailAddress)
		}
	}
	return strings.Join(addrs, ", ")
}

// rfc2822Date converts an EWS timestamp to the mail header date format,
// passing unparseable values through unchanged.
func rfc2822Date(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Format("Mon, 02 Jan 2006 15:04:05 -0700")
}

// folderUIDValidity derives a stable UIDVALIDITY from the folder name. The
// remote API has no equivalent counter, so the value only needs to be
// deterministic for a given folder.
func folderUIDValidity(name string) uint32 {
	var sum uint32
	for _, b := range []byte(name) {
		sum += uint32(b)
	}
	return sum
}
