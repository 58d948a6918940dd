package models

// FileUpload is a single file extracted from the multipart form
type FileUpload struct {
	Path    string // repo-relative path, already cleaned
	Content []byte
}

// PublishRequest carries everything the publisher needs for one commit
type PublishRequest struct {
	Owner       string
	Repo        string
	Branch      string // empty means the repository default branch
	Message     string
	Token       string // caller-supplied GitHub token, never logged
	AuthorName  string
	AuthorEmail string
	Files       []FileUpload
}

// PublishResult describes the commit that was created
// @Description Result of publishing a batch of files as a single commit
type PublishResult struct {
	// SHA of the new commit
	CommitSHA string `json:"commit_sha" example:"d6cd1e2bd19e03a81132a23b2025920577f84e37"`
	// SHA of the tree the commit points at
	TreeSHA string `json:"tree_sha" example:"f9264f7c310a23b2025920577f84e37d6cd1e2bd"`
	// Branch that was advanced
	Branch string `json:"branch" example:"main"`
	// Web URL of the new commit
	CommitURL string `json:"commit_url,omitempty"`
	// Repo-relative paths included in the commit
	Paths []string `json:"paths"`
}

// PublishResponse is the envelope returned by the publish endpoints
// @Description Response containing publish status and commit details
type PublishResponse struct {
	// Whether the publish succeeded
	Success bool `json:"success" example:"true"`
	// Commit details when successful
	Result *PublishResult `json:"result,omitempty"`
	// Status message or error details
	Message string `json:"message,omitempty"`
	// Filenames rejected by the safety filter, if any
	Rejected []string `json:"rejected,omitempty"`
}
