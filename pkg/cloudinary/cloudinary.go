// Package cloudinary uploads material attachments to Cloudinary and hands
// back the CDN URL that gets stored on the content record.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config carries the Cloudinary account credentials and the target folder.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service wraps a Cloudinary client behind the uploader contract the content
// service expects.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New validates the credentials and builds a ready-to-use service.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary: cloud name, api key and api secret are all required")
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: init client: %w", err)
	}

	return &Service{
		client: client,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload streams the file to Cloudinary and returns its secure URL. The
// resource type is auto-detected so images and PDFs go through the same path.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	result, err := s.client.Upload.Upload(ctx, reader, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicIDFor(name),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary: upload %q: %w", name, err)
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Int("bytes", result.Bytes).
		Msg("asset uploaded")

	return result.SecureURL, nil
}

// publicIDFor derives a collision-resistant public id from the original file
// name. Anything outside [A-Za-z0-9] becomes a dash, and a unix timestamp
// suffix keeps repeated uploads of the same file distinct.
func publicIDFor(name string) string {
	slug := strings.TrimSuffix(name, filepath.Ext(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)

	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "upload"
	}

	return fmt.Sprintf("%s-%d", slug, time.Now().Unix())
}
