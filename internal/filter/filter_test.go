package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowDefaults(t *testing.T) {
	f := New(nil, nil, nil)

	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"markdown", "README.md", true},
		{"go source", "main.go", true},
		{"nested path", "docs/guide/intro.md", true},
		{"image", "logo.png", true},
		{"allowed bare name", "Makefile", true},
		{"allowed dotfile", ".gitignore", true},
		{"zero extension", "NOTES", false},
		{"blocked env file", ".env", false},
		{"blocked env variant", ".env.local", false},
		{"blocked ssh key", "id_rsa", false},
		{"blocked in subdirectory", "config/.env", false},
		{"blocked credentials", "credentials.json", false},
		{"blocked case insensitive", "ID_RSA", false},
		{"empty name", "", false},
		{"absolute path", "/etc/passwd", false},
		{"parent traversal", "../outside.md", false},
		{"sneaky traversal", "docs/../../outside.md", false},
		{"dot only", ".", false},
		{"backslash path", "docs\\notes.md", false},
		{"unknown extension", "binary.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Allow(tt.filename), "filename: %q", tt.filename)
		})
	}
}

func TestAllowCustomLists(t *testing.T) {
	f := New([]string{".csv", "tsv"}, []string{"DATA"}, []string{"export.csv"})

	assert.True(t, f.Allow("report.csv"))
	assert.True(t, f.Allow("report.tsv"), "extensions are normalized to a leading dot")
	assert.True(t, f.Allow("DATA"))
	assert.False(t, f.Allow("report.md"), "custom allowlist replaces the defaults")
	assert.False(t, f.Allow("export.csv"), "blocked wins over allowed")
}

func TestReject(t *testing.T) {
	f := New(nil, nil, nil)

	rejected := f.Reject([]string{"ok.md", ".env", "fine.go", "id_rsa"})
	assert.Equal(t, []string{".env", "id_rsa"}, rejected)

	assert.Nil(t, f.Reject([]string{"ok.md", "fine.go"}))
}
