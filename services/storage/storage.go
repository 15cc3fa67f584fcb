package storage

import (
	"context"
	"fmt"
	"time"

	"kinecare/config"
	"kinecare/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService stores patient-supplied documents, typically the medical
// certificate attached to an appointment.
type StorageService interface {
	UploadFile(ctx context.Context, localFilePath, destFolder string) (*models.Attachment, error)
	DeleteFile(ctx context.Context, publicID string) error
}

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage builds the storage service from the app
// configuration.
func NewCloudinaryStorage() (*CloudinaryStorage, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// UploadFile pushes the file into the given folder and returns the
// attachment reference to store on the appointment.
func (s *CloudinaryStorage) UploadFile(ctx context.Context, localFilePath, destFolder string) (*models.Attachment, error) {
	result, err := s.cld.Upload.Upload(ctx, localFilePath, uploader.UploadParams{
		Folder: destFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("no public ID returned")
	}

	return &models.Attachment{
		URL:        result.SecureURL,
		PublicID:   result.PublicID,
		UploadedAt: time.Now(),
	}, nil
}

// DeleteFile removes a previously uploaded file by its public ID.
func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
