package auth

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Credentials is one login attempt's identity. The password is never
// included in log output.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{username: %s, password: [REDACTED]}", c.Username)
}

// Provider produces an HTTP Authorization header value on demand. The
// translation client depends only on this capability, never on the concrete
// variant.
type Provider interface {
	AuthorizationHeader(ctx context.Context) (string, error)
}

// Basic is the static username/password variant.
type Basic struct {
	creds Credentials
}

func NewBasic(username, password string) *Basic {
	return &Basic{creds: Credentials{Username: username, Password: password}}
}

func (b *Basic) Username() string {
	return b.creds.Username
}

func (b *Basic) AuthorizationHeader(ctx context.Context) (string, error) {
	encoded := base64.StdEncoding.EncodeToString([]byte(b.creds.Username + ":" + b.creds.Password))
	return "Basic " + encoded, nil
}

// OAuth2 is the bearer-token variant, delegating to the token lifecycle
// client for acquisition and refresh.
type OAuth2 struct {
	client *OAuth2Client
}

func NewOAuth2(client *OAuth2Client) *OAuth2 {
	return &OAuth2{client: client}
}

func (o *OAuth2) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := o.client.GetToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AuthorizationHeader(), nil
}
