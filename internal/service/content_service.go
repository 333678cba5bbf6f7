package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/models"
	"github.com/fisikaku/fisikaku-api/internal/observability"
	"github.com/fisikaku/fisikaku-api/internal/repository"
)

var (
	// ErrContentNotFound indicates the content block does not exist.
	ErrContentNotFound = errors.New("material content not found")
	// ErrContentInvalid indicates the block payload does not match its type.
	ErrContentInvalid = errors.New("content does not match its declared type")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

var youtubeURLPattern = regexp.MustCompile(`^https://(www\.)?(youtube\.com/watch\?v=|youtu\.be/)[\w-]{6,}`)

// ContentService manages the ordered content blocks under a material. Text
// blocks are sanitized HTML; image and pdf blocks go through the upload
// pipeline; link and youtube blocks carry validated URLs.
type ContentService interface {
	ListContents(ctx context.Context, materialID uint) ([]dto.ContentResponse, error)
	AddContent(ctx context.Context, caller auth.Caller, materialID uint, payload dto.ContentCreateRequest, file *multipart.FileHeader) (dto.ContentResponse, error)
	UpdateContent(ctx context.Context, caller auth.Caller, contentID uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error)
	DeleteContent(ctx context.Context, caller auth.Caller, contentID uint) error
}

type contentService struct {
	materials repository.MaterialRepository
	uploader  FileUploader
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	maxSize   int64
}

// NewContentService constructs a ContentService. The uploader may be nil, in
// which case image and pdf blocks are rejected.
func NewContentService(materialRepo repository.MaterialRepository, uploader FileUploader, maxSizeMB int, validate *validator.Validate, logger zerolog.Logger) ContentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &contentService{
		materials: materialRepo,
		uploader:  uploader,
		validator: validate,
		logger:    logger.With().Str("component", "content_service").Logger(),
		tracer:    otel.Tracer("github.com/fisikaku/fisikaku-api/internal/service/content"),
		sanitizer: bluemonday.UGCPolicy(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *contentService) ListContents(ctx context.Context, materialID uint) ([]dto.ContentResponse, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}

	responses := make([]dto.ContentResponse, 0, len(material.Contents))
	for _, content := range material.Contents {
		responses = append(responses, dto.NewContentResponse(content))
	}

	return responses, nil
}

func (s *contentService) AddContent(ctx context.Context, caller auth.Caller, materialID uint, payload dto.ContentCreateRequest, file *multipart.FileHeader) (dto.ContentResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.ContentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentResponse{}, err
	}

	if _, err := s.ownedMaterial(ctx, caller, materialID); err != nil {
		return dto.ContentResponse{}, err
	}

	content := models.MaterialContent{
		MaterialID: materialID,
		Type:       payload.Type,
		OrderIndex: payload.OrderIndex,
	}

	if err := s.fillBody(ctx, &content, payload.Content, payload.URL, file); err != nil {
		return dto.ContentResponse{}, err
	}

	if err := s.materials.CreateContent(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	s.logger.Info().
		Uint("content_id", content.ID).
		Uint("material_id", materialID).
		Str("type", content.Type).
		Msg("material content added")

	return dto.NewContentResponse(content), nil
}

func (s *contentService) UpdateContent(ctx context.Context, caller auth.Caller, contentID uint, payload dto.ContentUpdateRequest) (dto.ContentResponse, error) {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return dto.ContentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentResponse{}, err
	}

	content, err := s.ownedContent(ctx, caller, contentID)
	if err != nil {
		return dto.ContentResponse{}, err
	}

	content.Type = payload.Type
	content.OrderIndex = payload.OrderIndex

	// Updates never re-run the upload pipeline; image and pdf blocks keep
	// their stored URL unless the client supplies a replacement.
	url := payload.URL
	if url == "" {
		url = content.URL
	}
	if err := s.fillBody(ctx, &content, payload.Content, url, nil); err != nil {
		return dto.ContentResponse{}, err
	}

	if err := s.materials.UpdateContent(ctx, &content); err != nil {
		return dto.ContentResponse{}, err
	}

	return dto.NewContentResponse(content), nil
}

func (s *contentService) DeleteContent(ctx context.Context, caller auth.Caller, contentID uint) error {
	if err := auth.EnsureRole(caller, auth.RoleTeacher); err != nil {
		return err
	}

	if _, err := s.ownedContent(ctx, caller, contentID); err != nil {
		return err
	}

	if err := s.materials.DeleteContent(ctx, contentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}

	s.logger.Info().Uint("content_id", contentID).Msg("material content deleted")

	return nil
}

// fillBody validates and stores the type-specific half of a content block.
func (s *contentService) fillBody(ctx context.Context, content *models.MaterialContent, body, url string, file *multipart.FileHeader) error {
	switch content.Type {
	case models.ContentTypeText:
		clean := strings.TrimSpace(s.sanitizer.Sanitize(body))
		if clean == "" {
			return fmt.Errorf("text block empty after sanitization: %w", ErrContentInvalid)
		}
		content.Content = clean
		content.URL = ""
	case models.ContentTypeYouTube:
		if !youtubeURLPattern.MatchString(url) {
			return fmt.Errorf("not a recognized youtube url: %w", ErrContentInvalid)
		}
		content.URL = url
		content.Content = ""
	case models.ContentTypeLink:
		if url == "" {
			return fmt.Errorf("link block requires a url: %w", ErrContentInvalid)
		}
		content.URL = url
		content.Content = ""
	case models.ContentTypeImage, models.ContentTypePDF:
		if file != nil {
			uploaded, err := s.storeFile(ctx, content.Type, file)
			if err != nil {
				return err
			}
			content.URL = uploaded
		} else if url != "" {
			content.URL = url
		} else {
			return fmt.Errorf("%s block requires a file or url: %w", content.Type, ErrContentInvalid)
		}
		content.Content = ""
	default:
		return ErrContentInvalid
	}

	return nil
}

// storeFile runs the upload pipeline: size limit, sniffed MIME check against
// the declared block type, then the storage backend.
func (s *contentService) storeFile(ctx context.Context, blockType string, file *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", errors.New("no upload storage configured")
	}

	ctx, span := s.tracer.Start(ctx, "content.upload", trace.WithAttributes(
		attribute.String("content.type", blockType),
		attribute.Int64("upload.request_size", file.Size),
	))
	defer span.End()

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return "", err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return "", ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !mimeAllowed(blockType, detected.String()) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return "", ErrUploadTypeNotAllowed
	}

	url, err := s.uploader.Upload(ctx, sanitizeFileName(file.Filename), bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", err
	}

	observability.UploadRequests().WithLabelValues(blockType).Inc()
	span.SetStatus(codes.Ok, "stored")

	return url, nil
}

func (s *contentService) ownedMaterial(ctx context.Context, caller auth.Caller, id uint) (models.Material, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Material{}, ErrMaterialNotFound
		}
		return models.Material{}, err
	}

	if material.CreatedBy != caller.ID {
		return models.Material{}, auth.ErrForbidden
	}

	return material, nil
}

func (s *contentService) ownedContent(ctx context.Context, caller auth.Caller, id uint) (models.MaterialContent, error) {
	content, err := s.materials.GetContentByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MaterialContent{}, ErrContentNotFound
		}
		return models.MaterialContent{}, err
	}

	if _, err := s.ownedMaterial(ctx, caller, content.MaterialID); err != nil {
		return models.MaterialContent{}, err
	}

	return content, nil
}

func mimeAllowed(blockType, mime string) bool {
	lower := strings.ToLower(strings.TrimSpace(mime))
	switch blockType {
	case models.ContentTypeImage:
		return strings.HasPrefix(lower, "image/")
	case models.ContentTypePDF:
		return lower == "application/pdf"
	default:
		return false
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
