package ews

import (
	"strings"
	"testing"
)

func TestFolderIDEscaping(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"plain id", "AAMkAGI2", `<t:FolderId Id="AAMkAGI2"/>`},
		{"quote in id", `AAMk"injected`, `<t:FolderId Id="AAMk&#34;injected"/>`},
		{
			"element injection attempt",
			`x"/><t:DistinguishedFolderId Id="inbox`,
			`<t:FolderId Id="x&#34;/&gt;&lt;t:DistinguishedFolderId Id=&#34;inbox"/>`,
		},
		{"ampersand", "a&b", `<t:FolderId Id="a&amp;b"/>`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := folderIDXML(tc.id); got != tc.want {
				t.Errorf("folderIDXML(%q) = %q, want %q", tc.id, got, tc.want)
			}
		})
	}
}

func TestDistinguishedFolderIDEscaping(t *testing.T) {
	got := distinguishedFolderXML(`inbox"><evil/`)
	if strings.Count(got, `"`) != 2 {
		t.Errorf("escaped id leaked a quote: %q", got)
	}
	if strings.Contains(got, "<evil") {
		t.Errorf("escaped id leaked markup: %q", got)
	}
}

func TestFindFolderRequestEscapedReference(t *testing.T) {
	// A LIST reference flows into the envelope through folderIDXML; the
	// request must stay a single well-formed FindFolder.
	body := findFolderRequestBody(folderIDXML(`ref"><FindItem`))
	if strings.Contains(body, `ref"><FindItem`) {
		t.Errorf("reference interpolated unescaped:\n%s", body)
	}
	if strings.Count(body, "<FindFolder ") != 1 {
		t.Errorf("envelope structure altered:\n%s", body)
	}
}
