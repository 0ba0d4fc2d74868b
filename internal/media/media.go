// Package media validates captured proof files and hands them to an uploader.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/flashdo/internal/clock"
	"github.com/julianstephens/flashdo/internal/constants"
	"github.com/julianstephens/flashdo/internal/models"
)

var (
	ErrUploadFailed    = errors.New("media upload failed")
	ErrTooLarge        = errors.New("media exceeds the 50MB limit")
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrEmpty           = errors.New("media is empty")
)

var extensionTypes = map[string]models.MediaType{
	".jpg":  models.MediaImage,
	".jpeg": models.MediaImage,
	".png":  models.MediaImage,
	".gif":  models.MediaImage,
	".webp": models.MediaImage,
	".mp4":  models.MediaVideo,
	".mov":  models.MediaVideo,
	".webm": models.MediaVideo,
}

// Capture is a raw photo or video as taken by the user.
type Capture struct {
	Name string
	Data []byte
}

// Upload is what an Uploader returns for a stored capture.
type Upload struct {
	MediaRef  string
	MediaType models.MediaType
	ExpiresAt time.Time
}

// Uploader stores a capture somewhere the feed can reference it. Upload must
// honour ctx; a cancelled upload returns an error and stores nothing.
type Uploader interface {
	Upload(ctx context.Context, c Capture) (Upload, error)
}

// Validate checks size and type and returns the media kind of c. The file
// extension picks the kind; when the content sniffs as an image or a video
// it must agree.
func Validate(c Capture) (models.MediaType, error) {
	if len(c.Data) == 0 {
		return "", ErrEmpty
	}
	if len(c.Data) > constants.MaxMediaBytes {
		return "", ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(c.Name))
	kind, ok := extensionTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	sniffed := http.DetectContentType(c.Data)
	switch {
	case strings.HasPrefix(sniffed, "image/") && kind != models.MediaImage,
		strings.HasPrefix(sniffed, "video/") && kind != models.MediaVideo:
		return "", fmt.Errorf("%w: %s content in a %s file", ErrUnsupportedType, sniffed, ext)
	}
	return kind, nil
}

// ReadCapture loads a capture from disk, refusing oversized files before
// reading them.
func ReadCapture(path string) (Capture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Capture{}, err
	}
	if info.Size() > constants.MaxMediaBytes {
		return Capture{}, ErrTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Capture{}, err
	}
	return Capture{Name: filepath.Base(path), Data: data}, nil
}

// LocalUploader copies captures into a directory under random names.
type LocalUploader struct {
	Dir   string
	Clock clock.Clock
}

func NewLocalUploader(dir string, clk clock.Clock) *LocalUploader {
	return &LocalUploader{Dir: dir, Clock: clk}
}

func (u *LocalUploader) Upload(ctx context.Context, c Capture) (Upload, error) {
	kind, err := Validate(c)
	if err != nil {
		return Upload{}, err
	}
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}

	if err := os.MkdirAll(u.Dir, 0700); err != nil {
		return Upload{}, fmt.Errorf("failed to create media directory: %w", err)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(c.Name))
	path := filepath.Join(u.Dir, name)
	if err := os.WriteFile(path, c.Data, 0600); err != nil {
		return Upload{}, fmt.Errorf("failed to write media: %w", err)
	}

	// The caller may have given up while the file was being written.
	if err := ctx.Err(); err != nil {
		_ = os.Remove(path)
		return Upload{}, err
	}

	return Upload{
		MediaRef:  path,
		MediaType: kind,
		ExpiresAt: u.Clock.Now().Add(constants.StoryTTL),
	}, nil
}
