package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"locallisting/internal/config"
)

// Upload is one image file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Storage is the image host. Only the returned object reference and public URL are persisted.
type Storage interface {
	UploadImage(ctx context.Context, listingID string, upload Upload) (string, string, error)
	DeleteImage(ctx context.Context, objectName string) error
	GetImageURL(objectName string) string
}

type MinIOClient struct {
	client *minio.Client
	config config.MinIO
}

func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", cfg.BucketName, err)
		}
	}

	return &MinIOClient{client: client, config: cfg}, nil
}

// objectName builds listings/<listing>/<yyyy>/<mm>/<uuid><ext> for an uploaded file.
func objectName(listingID, fileName string, now time.Time) string {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".jpg"
	}

	return fmt.Sprintf("listings/%s/%d/%02d/%s%s",
		listingID,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		fileExt)
}

func contentTypeOf(upload Upload) string {
	if upload.ContentType != "" && upload.ContentType != "application/octet-stream" {
		return upload.ContentType
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(upload.FileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType
}

func (m *MinIOClient) UploadImage(ctx context.Context, listingID string, upload Upload) (string, string, error) {
	now := time.Now()
	name := objectName(listingID, upload.FileName, now)

	_, err := m.client.PutObject(ctx, m.config.BucketName, name, upload.Body, upload.Size,
		minio.PutObjectOptions{
			ContentType: contentTypeOf(upload),
			UserMetadata: map[string]string{
				"original-filename": upload.FileName,
				"listing-id":        listingID,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("error uploading to MinIO: %w", err)
	}

	return name, m.GetImageURL(name), nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.config.BucketName, objectName,
		minio.RemoveObjectOptions{
			GovernanceBypass: true,
		})
	if err != nil {
		return fmt.Errorf("error deleting from MinIO: %w", err)
	}
	return nil
}

func (m *MinIOClient) GetImageURL(objectName string) string {
	return publicURL(m.config, objectName)
}

func publicURL(cfg config.MinIO, objectName string) string {
	base := strings.TrimSuffix(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}

	return fmt.Sprintf("%s/%s/%s", base, cfg.BucketName, objectName)
}
