package ews

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mailgate/internal/auth"
	"mailgate/internal/server/utils"
)

const servicePath = "/EWS/Exchange.asmx"

// wellKnownFolders maps protocol-level mailbox names to the remote API's
// canonical distinguished folder ids.
var wellKnownFolders = map[string]string{
	"INBOX":         "inbox",
	"SENT":          "sentitems",
	"SENT ITEMS":    "sentitems",
	"DRAFTS":        "drafts",
	"TRASH":         "deleteditems",
	"DELETED ITEMS": "deleteditems",
}

// Client owns one authenticated HTTP session against the remote groupware
// API and translates protocol-neutral operations into SOAP round trips. One
// instance serves exactly one connection.
type Client struct {
	baseURL    string
	httpClient *http.Client
	provider   auth.Provider
	authHeader string
	logger     *slog.Logger
}

// NewClient builds a client and performs the authentication handshake
// immediately. Construction fails on an empty base URL or a rejected
// handshake.
func NewClient(ctx context.Context, baseURL string, provider auth.Provider, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, &ConfigError{Reason: "gateway URL not configured"}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		provider:   provider,
		logger:     logger,
	}
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) endpoint() string {
	return c.baseURL + servicePath
}

// authenticate obtains an authorization header from the credential provider.
// Static credentials are additionally verified with one shallow folder
// enumeration, since the header alone proves nothing about them.
func (c *Client) authenticate(ctx context.Context) error {
	c.logger.Debug("authenticating to remote API", "endpoint", c.endpoint())

	header, err := c.provider.AuthorizationHeader(ctx)
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	c.authHeader = header

	if _, ok := c.provider.(*auth.Basic); ok {
		if err := c.verifyBasicAuth(ctx); err != nil {
			return err
		}
	}

	c.logger.Debug("authentication successful")
	return nil
}

func (c *Client) verifyBasicAuth(ctx context.Context) error {
	_, err := c.send(ctx, probeRequestBody())
	return err
}

// send performs one authenticated SOAP round trip, refreshing the
// authorization header first so an expiring bearer token is replaced before
// use. The round trip is detached from ctx cancellation: a started call runs
// to completion with the HTTP client's timeout as its only bound, so
// shutdown never aborts a command mid-flight.
func (c *Client) send(ctx context.Context, body string) ([]byte, error) {
	ctx = context.WithoutCancel(ctx)

	header, err := c.provider.AuthorizationHeader(ctx)
	if err != nil {
		return nil, &AuthError{Reason: err.Error()}
	}
	c.authHeader = header

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), strings.NewReader(body))
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint(), Body: err.Error()}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint(), Body: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint(), Body: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Endpoint: c.endpoint(), Status: resp.StatusCode, Body: truncateBody(data)}
	}
	return data, nil
}

// ListFolders enumerates folder display names under reference (the root when
// empty) and filters them against the LIST pattern locally.
func (c *Client) ListFolders(ctx context.Context, reference, pattern string) ([]string, error) {
	c.logger.Debug("listing folders", "reference", reference, "pattern", pattern)

	parent := distinguishedFolderXML("msgfolderroot")
	if reference != "" {
		parent = folderIDXML(reference)
	}

	data, err := c.send(ctx, findFolderRequestBody(parent))
	if err != nil {
		return nil, err
	}

	folders, err := parseFindFolder(data, c.endpoint())
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(folders))
	for _, f := range folders {
		names = append(names, f.DisplayName)
	}
	if pattern == "*" {
		return names, nil
	}
	return utils.FilterFolders(names, "", pattern), nil
}

// SelectFolder resolves a mailbox name and returns its point-in-time
// counters.
func (c *Client) SelectFolder(ctx context.Context, name string) (*FolderStats, error) {
	c.logger.Debug("selecting folder", "folder", name)

	folderXML, err := c.resolveFolderXML(ctx, name)
	if err != nil {
		return nil, err
	}

	data, err := c.send(ctx, getFolderRequestBody(folderXML))
	if err != nil {
		return nil, err
	}

	folder, err := parseGetFolder(data, c.endpoint())
	if err != nil {
		return nil, err
	}

	return &FolderStats{
		Exists:      folder.TotalCount,
		Recent:      0, // the remote API has no notion of recent messages
		Unseen:      folder.UnreadCount,
		UIDValidity: folderUIDValidity(name),
		UIDNext:     uidBase + folder.TotalCount + 1,
	}, nil
}

// FetchMessages enumerates the folder's items and renders the requested data
// parts for each selected sequence number, in request order.
func (c *Client) FetchMessages(ctx context.Context, folder, sequenceSet, items string) ([]Message, error) {
	c.logger.Debug("fetching messages", "folder", folder, "sequence_set", sequenceSet, "items", items)

	folderXML, err := c.resolveFolderXML(ctx, folder)
	if err != nil {
		return nil, err
	}

	data, err := c.send(ctx, findItemRequestBody(folderXML))
	if err != nil {
		return nil, err
	}

	remoteItems, err := parseFindItem(data, c.endpoint())
	if err != nil {
		return nil, err
	}

	sequences, err := utils.ParseSequenceSet(sequenceSet, len(remoteItems))
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	fetchItems := parseFetchItems(items)

	var messages []Message
	for _, seq := range sequences {
		if seq > len(remoteItems) {
			continue
		}
		rendered := renderFetchData(seq, remoteItems[seq-1], fetchItems)
		if rendered == "" {
			continue
		}
		messages = append(messages, Message{Sequence: seq, Data: rendered})
	}
	return messages, nil
}

// resolveFolderXML maps a well-known mailbox name to its distinguished id,
// falling back to a display-name lookup under the root for anything else.
func (c *Client) resolveFolderXML(ctx context.Context, name string) (string, error) {
	if id, ok := wellKnownFolders[strings.ToUpper(name)]; ok {
		return distinguishedFolderXML(id), nil
	}

	data, err := c.send(ctx, findFolderRequestBody(distinguishedFolderXML("msgfolderroot")))
	if err != nil {
		return "", err
	}
	folders, err := parseFindFolder(data, c.endpoint())
	if err != nil {
		return "", err
	}
	for _, f := range folders {
		if strings.EqualFold(f.DisplayName, name) {
			return folderIDXML(f.FolderID.ID), nil
		}
	}
	return "", &TransportError{Endpoint: c.endpoint(), Body: fmt.Sprintf("folder %q not found", name)}
}

func truncateBody(data []byte) string {
	const max = 512
	if len(data) <= max {
		return string(data)
	}
	return string(data[:max]) + "..."
}
