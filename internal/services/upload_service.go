package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

const MaxUploadSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ValidateUpload checks the declared content type first, then the size.
func ValidateUpload(contentType string, size int64) error {
	if _, ok := allowedImageTypes[strings.ToLower(contentType)]; !ok {
		return ErrUnsupportedFileType
	}
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

var uploadSubdirs = map[string]string{
	"service-request": "service-requests",
	"post":            "posts",
	"amenity":         "amenities",
	"apartment":       "apartments",
}

// SubdirForType maps the upload purpose onto its storage folder
func SubdirForType(uploadType string) string {
	if dir, ok := uploadSubdirs[uploadType]; ok {
		return dir
	}
	return "general"
}

// uploadKind returns the known purpose or "general"; client input never
// reaches the object key any other way.
func uploadKind(uploadType string) string {
	kind := strings.TrimSpace(uploadType)
	if _, ok := uploadSubdirs[kind]; ok {
		return kind
	}
	return "general"
}

type UploadInput struct {
	UserID      uint
	Type        string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadResult struct {
	ImageID  uint   `json:"image_id"`
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

type UploadService struct {
	db      *gorm.DB
	storage Storage
	now     func() time.Time
}

func NewUploadService(db *gorm.DB, storage Storage) *UploadService {
	return &UploadService{db: db, storage: storage, now: time.Now}
}

// Upload validates, stores and records an image
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Body == nil {
		return nil, ErrMissingFile
	}
	if err := ValidateUpload(in.ContentType, in.Size); err != nil {
		return nil, err
	}

	kind := uploadKind(in.Type)
	subdir := SubdirForType(kind)
	name := objectName(kind, in.UserID, s.now(), in.FileName, in.ContentType)
	key := path.Join(subdir, name)

	url, err := s.storage.Put(ctx, key, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	image := models.Image{
		URL:         url,
		ObjectKey:   key,
		Category:    subdir,
		ContentType: in.ContentType,
		Size:        in.Size,
		UserID:      in.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&image).Error; err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	log := logger.WithComponent("uploads")
	log.Info().Uint("user_id", in.UserID).Str("key", key).Int64("size", in.Size).Msg("file uploaded")

	return &UploadResult{
		ImageID:  image.ID,
		URL:      url,
		FileName: name,
		FilePath: url,
		FileSize: in.Size,
		FileType: in.ContentType,
	}, nil
}

// objectName builds <type>_<user>_<unix ms>_<random>.<ext>
func objectName(uploadType string, userID uint, now time.Time, fileName, contentType string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%d_%s.%s", uploadType, userID, now.UnixMilli(), random, fileExtension(fileName, contentType))
}

func fileExtension(fileName, contentType string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		ext := strings.ToLower(fileName[i+1:])
		clean := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, ext)
		if clean != "" && len(clean) <= 5 {
			return clean
		}
	}
	return allowedImageTypes[strings.ToLower(contentType)]
}
