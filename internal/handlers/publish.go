package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dropforge/gitdrop/internal/filter"
	"github.com/dropforge/gitdrop/internal/logger"
	"github.com/dropforge/gitdrop/internal/metrics"
	"github.com/dropforge/gitdrop/internal/models"
	"github.com/dropforge/gitdrop/internal/services"
)

// PublishHandler handles file publish operations
type PublishHandler struct {
	publisher services.Publisher
	filter    *filter.Filter
	metrics   *metrics.Metrics
	maxFiles  int
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(publisher services.Publisher, f *filter.Filter, m *metrics.Metrics, maxFiles int) *PublishHandler {
	return &PublishHandler{
		publisher: publisher,
		filter:    f,
		metrics:   m,
		maxFiles:  maxFiles,
	}
}

// Publish commits a batch of uploaded files to a repository branch
// @Summary Publish files as a single commit
// @Description Uploads the submitted files to GitHub and advances the branch by one commit
// @Tags publish
// @Accept multipart/form-data
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param files formData file true "Files to publish (repeatable)"
// @Param branch formData string false "Target branch (default: repository default branch)"
// @Param message formData string false "Commit message"
// @Param prefix formData string false "Directory prefix inside the repository"
// @Success 200 {object} models.PublishResponse
// @Failure 400 {object} models.PublishResponse
// @Failure 401 {object} models.PublishResponse
// @Failure 422 {object} models.PublishResponse
// @Router /v1/publish/{owner}/{repo} [post]
func (h *PublishHandler) Publish(c *fiber.Ctx) error {
	start := time.Now()

	token := extractToken(c)
	if token == "" {
		return c.Status(401).JSON(models.PublishResponse{
			Success: false,
			Message: "GitHub token required (Authorization: Bearer or X-GitHub-Token header)",
		})
	}

	req, batchBytes, err := h.parseForm(c)
	if req == nil {
		// parseForm already wrote the response
		h.metrics.RecordPublish("rejected", time.Since(start), 0, batchBytes)
		return err
	}
	req.Token = token

	result, err := h.publisher.Publish(c.UserContext(), req)
	if err != nil {
		status := publishErrorStatus(err)
		logger.Errorf("❌ Publish to %s/%s failed: %v", req.Owner, req.Repo, err)
		h.metrics.RecordPublish("error", time.Since(start), 0, batchBytes)
		return c.Status(status).JSON(models.PublishResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	h.metrics.RecordPublish("success", time.Since(start), len(result.Paths), batchBytes)
	return c.JSON(models.PublishResponse{
		Success: true,
		Result:  result,
	})
}

// Check runs the batch through parsing and the filename filter without
// touching the remote
// @Summary Validate a batch without publishing
// @Description Parses the form and runs the filename safety filter; nothing is sent upstream
// @Tags publish
// @Accept multipart/form-data
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param files formData file true "Files to validate (repeatable)"
// @Success 200 {object} models.PublishResponse
// @Failure 422 {object} models.PublishResponse
// @Router /v1/publish/{owner}/{repo}/check [post]
func (h *PublishHandler) Check(c *fiber.Ctx) error {
	req, _, err := h.parseForm(c)
	if req == nil {
		return err
	}

	paths := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		paths = append(paths, f.Path)
	}
	return c.JSON(models.PublishResponse{
		Success: true,
		Result: &models.PublishResult{
			Branch: req.Branch,
			Paths:  paths,
		},
		Message: fmt.Sprintf("%d file(s) would be published", len(paths)),
	})
}

// parseForm extracts the publish request from the multipart form. On
// failure it writes the error response itself and returns a nil request.
func (h *PublishHandler) parseForm(c *fiber.Ctx) (*models.PublishRequest, int64, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, 0, c.Status(400).JSON(models.PublishResponse{
			Success: false,
			Message: "invalid multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return nil, 0, c.Status(400).JSON(models.PublishResponse{
			Success: false,
			Message: "no files provided",
		})
	}
	if len(files) > h.maxFiles {
		return nil, 0, c.Status(413).JSON(models.PublishResponse{
			Success: false,
			Message: fmt.Sprintf("too many files: %d (limit %d)", len(files), h.maxFiles),
		})
	}

	prefix := formValue(form, "prefix")
	if prefix != "" {
		cleaned := path.Clean(prefix)
		if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
			return nil, 0, c.Status(400).JSON(models.PublishResponse{
				Success: false,
				Message: fmt.Sprintf("invalid prefix: %s", prefix),
			})
		}
		prefix = cleaned
		if prefix == "." {
			prefix = ""
		}
	}

	// Reject the whole batch if any filename fails the safety filter
	var rejected []string
	for _, fh := range files {
		if !h.filter.Allow(fh.Filename) {
			rejected = append(rejected, fh.Filename)
		}
	}
	if len(rejected) > 0 {
		logger.Warnf("⚠️ Rejected batch for %s/%s: %s",
			c.Params("owner"), c.Params("repo"), strings.Join(rejected, ", "))
		return nil, 0, c.Status(422).JSON(models.PublishResponse{
			Success:  false,
			Message:  "batch contains filenames rejected by the safety filter",
			Rejected: rejected,
		})
	}

	var batchBytes int64
	uploads := make([]models.FileUpload, 0, len(files))
	for _, fh := range files {
		content, err := readFile(fh)
		if err != nil {
			return nil, batchBytes, c.Status(400).JSON(models.PublishResponse{
				Success: false,
				Message: fmt.Sprintf("failed to read %s: %v", fh.Filename, err),
			})
		}
		batchBytes += int64(len(content))
		uploads = append(uploads, models.FileUpload{
			Path:    path.Join(prefix, path.Clean(fh.Filename)),
			Content: content,
		})
	}

	message := formValue(form, "message")
	if message == "" {
		message = defaultMessage(uploads)
	}

	return &models.PublishRequest{
		Owner:       c.Params("owner"),
		Repo:        c.Params("repo"),
		Branch:      formValue(form, "branch"),
		Message:     message,
		AuthorName:  formValue(form, "author_name"),
		AuthorEmail: formValue(form, "author_email"),
		Files:       uploads,
	}, batchBytes, nil
}

// extractToken pulls the GitHub token from the request headers
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}
	return c.Get("X-GitHub-Token")
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

func defaultMessage(uploads []models.FileUpload) string {
	if len(uploads) == 1 {
		return fmt.Sprintf("Add %s", uploads[0].Path)
	}
	return fmt.Sprintf("Add %d files", len(uploads))
}

// publishErrorStatus maps publisher errors onto response statuses. Known
// client-attributable remote statuses are forwarded; everything else is a
// bad gateway.
func publishErrorStatus(err error) int {
	var remote *services.RemoteError
	if errors.As(err, &remote) {
		switch remote.StatusCode {
		case 401, 403, 404, 409, 422:
			return remote.StatusCode
		}
	}
	return 502
}
