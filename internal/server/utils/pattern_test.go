package utils

import (
	"reflect"
	"testing"
)

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		folder  string
		pattern string
		want    bool
	}{
		{"INBOX", "*", true},
		{"Sent Items", "*", true},
		{"Sent Items", "Sent*", true},
		{"Sent Items", "*Items", true},
		{"Drafts", "Sent*", false},
		{"inbox", "INBOX", true},
		{"Projects/2026", "Projects/*", true},
		{"Projects/2026", "%", false},
		{"Archive", "%", true},
		{"Archive", "Arch%ve", true},
		{"Projects/2026", "Projects%", false},
		{"Archive", "Archi%", true},
	}

	for _, tt := range tests {
		if got := MatchesPattern(tt.folder, tt.pattern); got != tt.want {
			t.Errorf("MatchesPattern(%q, %q) = %v, want %v", tt.folder, tt.pattern, got, tt.want)
		}
	}
}

func TestFilterFolders(t *testing.T) {
	folders := []string{"INBOX", "Sent Items", "Drafts", "Deleted Items", "Junk Email", "Archive"}

	all := FilterFolders(folders, "", "*")
	if !reflect.DeepEqual(all, folders) {
		t.Errorf("FilterFolders * = %v, want all folders", all)
	}

	items := FilterFolders(folders, "", "*Items")
	if !reflect.DeepEqual(items, []string{"Sent Items", "Deleted Items"}) {
		t.Errorf("FilterFolders *Items = %v", items)
	}

	none := FilterFolders(folders, "", "Nonexistent")
	if none != nil {
		t.Errorf("FilterFolders Nonexistent = %v, want nil", none)
	}
}

func TestCanonicalPattern(t *testing.T) {
	tests := []struct {
		reference, pattern, want string
	}{
		{"", "*", "*"},
		{"Projects", "*", "Projects/*"},
		{"Projects/", "*", "Projects/*"},
		{"Projects", "/Archive", "/Archive"},
	}
	for _, tt := range tests {
		if got := CanonicalPattern(tt.reference, tt.pattern); got != tt.want {
			t.Errorf("CanonicalPattern(%q, %q) = %q, want %q", tt.reference, tt.pattern, got, tt.want)
		}
	}
}

func TestParseQuotedString(t *testing.T) {
	if got := ParseQuotedString(`"Sent Items"`); got != "Sent Items" {
		t.Errorf("ParseQuotedString quoted = %q", got)
	}
	if got := ParseQuotedString("INBOX"); got != "INBOX" {
		t.Errorf("ParseQuotedString unquoted = %q", got)
	}
	if got := ParseQuotedString(`""`); got != "" {
		t.Errorf("ParseQuotedString empty quoted = %q", got)
	}
}
