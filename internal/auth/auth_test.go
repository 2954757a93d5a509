package auth

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestBasicAuthorizationHeader(t *testing.T) {
	b := NewBasic("bob", "secret")
	header, err := b.AuthorizationHeader(context.Background())
	if err != nil {
		t.Fatalf("AuthorizationHeader: %v", err)
	}
	// base64("bob:secret")
	if header != "Basic Ym9iOnNlY3JldA==" {
		t.Errorf("header = %q", header)
	}
}

func TestCredentialsRedacted(t *testing.T) {
	c := Credentials{Username: "bob", Password: "hunter2"}
	s := c.String()
	if strings.Contains(s, "hunter2") {
		t.Errorf("Credentials.String() leaks password: %q", s)
	}
	if !strings.Contains(s, "bob") {
		t.Errorf("Credentials.String() missing username: %q", s)
	}
}

func TestTokenExpiry(t *testing.T) {
	past := &Token{ExpiresAt: time.Now().Add(-time.Minute)}
	if !past.IsExpired() {
		t.Error("token expired a minute ago, IsExpired() = false")
	}
	if !past.IsExpiringSoon(5 * time.Minute) {
		t.Error("expired token must report expiring soon")
	}

	longLived := &Token{ExpiresAt: time.Now().Add(time.Hour)}
	if longLived.IsExpired() {
		t.Error("token valid for an hour, IsExpired() = true")
	}
	if longLived.IsExpiringSoon(300 * time.Second) {
		t.Error("token valid for an hour reported expiring within 300s")
	}

	nearExpiry := &Token{ExpiresAt: time.Now().Add(60 * time.Second)}
	if !nearExpiry.IsExpiringSoon(300 * time.Second) {
		t.Error("token valid for 60s not reported expiring within 300s")
	}
}

func TestTokenAuthorizationHeader(t *testing.T) {
	tok := &Token{AccessToken: "abc123", TokenType: "Bearer"}
	if got := tok.AuthorizationHeader(); got != "Bearer abc123" {
		t.Errorf("AuthorizationHeader = %q", got)
	}
}
