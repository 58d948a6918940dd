package filter

import (
	"path"
	"strings"
)

// Filter decides whether a filename is safe to publish. It is a flat
// string-match allowlist: no globs, no regexes, no content inspection.
type Filter struct {
	allowedExts  map[string]bool // lowercase, with leading dot
	allowedNames map[string]bool // exact base names allowed regardless of extension
	blockedNames map[string]bool // exact base names rejected regardless of extension
}

// DefaultAllowedExtensions covers the file types the service is willing
// to push without further inspection.
var DefaultAllowedExtensions = []string{
	".md", ".txt", ".json", ".yaml", ".yml", ".toml", ".csv",
	".go", ".py", ".js", ".ts", ".tsx", ".jsx", ".rb", ".rs", ".java",
	".c", ".h", ".cpp", ".hpp", ".sh", ".sql", ".html", ".css", ".xml",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".pdf",
}

// DefaultAllowedNames are extensionless files that are still fine.
var DefaultAllowedNames = []string{
	"Makefile", "Dockerfile", "LICENSE", "README", "CODEOWNERS", ".gitignore",
}

// DefaultBlockedNames are filenames that tend to carry secrets. Blocked
// always wins over allowed.
var DefaultBlockedNames = []string{
	".env", ".env.local", ".env.production", ".npmrc", ".netrc",
	"id_rsa", "id_ed25519", "id_dsa", "credentials", "credentials.json",
	"service-account.json", ".htpasswd", "secrets.yaml", "secrets.yml",
}

// New builds a filter from explicit lists. Empty slices fall back to the
// package defaults.
func New(allowedExts, allowedNames, blockedNames []string) *Filter {
	if len(allowedExts) == 0 {
		allowedExts = DefaultAllowedExtensions
	}
	if len(allowedNames) == 0 {
		allowedNames = DefaultAllowedNames
	}
	if len(blockedNames) == 0 {
		blockedNames = DefaultBlockedNames
	}

	f := &Filter{
		allowedExts:  make(map[string]bool, len(allowedExts)),
		allowedNames: make(map[string]bool, len(allowedNames)),
		blockedNames: make(map[string]bool, len(blockedNames)),
	}
	for _, ext := range allowedExts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.allowedExts[strings.ToLower(ext)] = true
	}
	for _, name := range allowedNames {
		f.allowedNames[name] = true
	}
	for _, name := range blockedNames {
		f.blockedNames[strings.ToLower(name)] = true
	}
	return f
}

// Allow reports whether the given repo-relative filename may be published.
func (f *Filter) Allow(name string) bool {
	if name == "" {
		return false
	}
	// Reject anything that could escape the target directory
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}

	base := path.Base(cleaned)
	if f.blockedNames[strings.ToLower(base)] {
		return false
	}
	if f.allowedNames[base] {
		return true
	}
	ext := strings.ToLower(path.Ext(base))
	if ext == "" || ext == base {
		// No extension and not an explicitly allowed name
		return false
	}
	return f.allowedExts[ext]
}

// Reject returns the subset of names that fail the filter, preserving order.
func (f *Filter) Reject(names []string) []string {
	var rejected []string
	for _, name := range names {
		if !f.Allow(name) {
			rejected = append(rejected, name)
		}
	}
	return rejected
}
