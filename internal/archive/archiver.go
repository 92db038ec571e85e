// Package archive downloads a record's images and stores them in a blob
// store for offline use.
package archive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/curator"
)

const (
	maxAttempts    = 3
	retryBackoff   = 2 * time.Second
	defaultTimeout = 30 * time.Second
	maxImageBytes  = 20 << 20
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Result summarizes one archive run.
type Result struct {
	FolderPath string `json:"folder_path"`
	SavedCount int    `json:"saved_count"`
	TotalCount int    `json:"total_count"`
}

// Archiver downloads image URLs and writes them through a blob store.
type Archiver struct {
	blobs   curator.BlobStore
	ids     curator.IDGenerator
	client  *http.Client
	logger  *zap.Logger
	backoff time.Duration
}

// NewArchiver builds an Archiver. A nil client gets a timeout-bounded
// default.
func NewArchiver(blobs curator.BlobStore, ids curator.IDGenerator, client *http.Client, logger *zap.Logger) *Archiver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{blobs: blobs, ids: ids, client: client, logger: logger, backoff: retryBackoff}
}

// ArchiveImages downloads every image of the record into a folder named
// after the product. Individual download failures are skipped after retries;
// the result reports how many images made it.
func (a *Archiver) ArchiveImages(ctx context.Context, record curator.ProductRecord) (Result, error) {
	if len(record.Images) == 0 {
		return Result{}, fmt.Errorf("record %s has no images", record.ID)
	}

	folder := folderName(record.Name)
	result := Result{FolderPath: folder, TotalCount: len(record.Images)}

	for i, imageURL := range record.Images {
		data, contentType, err := a.download(ctx, imageURL)
		if err != nil {
			a.logger.Warn("image download failed, skipping",
				zap.String("record_id", record.ID),
				zap.String("url", imageURL),
				zap.Error(err))
			continue
		}

		suffix, err := a.ids.NewID()
		if err != nil {
			return result, fmt.Errorf("generate filename suffix: %w", err)
		}
		name := fmt.Sprintf("%s_image_%d_%s%s",
			folder, i+1, shortID(suffix), imageExtension(imageURL, contentType))

		if _, err := a.blobs.PutObject(ctx, path.Join(folder, name), contentType, data); err != nil {
			return result, fmt.Errorf("store image %d: %w", i+1, err)
		}
		result.SavedCount++
	}

	a.logger.Info("images archived",
		zap.String("record_id", record.ID),
		zap.String("folder", folder),
		zap.Int("saved", result.SavedCount),
		zap.Int("total", result.TotalCount))
	return result, nil
}

// download fetches one image, retrying transient failures.
func (a *Archiver) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(a.backoff):
			}
		}

		data, contentType, err := a.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, contentType, nil
		}
		lastErr = err
		a.logger.Debug("image fetch attempt failed",
			zap.String("url", imageURL),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, "", fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (a *Archiver) fetchOnce(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// folderName derives a filesystem-safe folder from the product name.
func folderName(productName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(productName), " ", "_")
	name = unsafePathChars.ReplaceAllString(name, "")
	if name == "" {
		name = "product"
	}
	return name
}

// imageExtension picks a file extension from the URL path, falling back to
// the response content type, then to .jpg.
func imageExtension(imageURL, contentType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); isImageExt(ext) {
			return ext
		}
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif":
		return true
	}
	return false
}

// shortID keeps filenames readable by using only the first UUID segment.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
