// internal/services/storage_service.go
package services

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/models"
)

// StorageService hands out short-lived links to stored file objects. Access
// checks happen before it is called.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
	ttl      time.Duration
}

type DeliveryURL struct {
	URL       string      `json:"url"`
	Level     AccessLevel `json:"level"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	ttl := time.Duration(config.AWS.PresignTTL) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config, ttl: ttl}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
		ttl:      ttl,
	}, nil
}

// DeliveryURLFor returns a link to the file body for AccessDownload or to the
// preview object for AccessPreview.
func (s *StorageService) DeliveryURLFor(file *models.File, level AccessLevel) (*DeliveryURL, error) {
	var key string
	switch level {
	case AccessDownload:
		key = file.StorageKey
	case AccessPreview:
		key = file.PreviewKey
	default:
		return nil, ErrForbidden
	}
	if key == "" {
		return nil, ErrObjectNotFound
	}

	expiresAt := time.Now().Add(s.ttl)
	if s.s3Client == nil {
		return &DeliveryURL{URL: s.localURL(key, expiresAt), Level: level, ExpiresAt: expiresAt}, nil
	}

	signed, err := s.GeneratePresignedURL(key, s.ttl)
	if err != nil {
		return nil, err
	}
	return &DeliveryURL{URL: signed, Level: level, ExpiresAt: expiresAt}, nil
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	signed, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return signed, nil
}

func (s *StorageService) localURL(key string, expiresAt time.Time) string {
	base := strings.TrimRight(s.config.AWS.LocalBaseURL, "/")
	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", expiresAt.Unix()))
	return fmt.Sprintf("%s/%s?%s", base, key, q.Encode())
}

// GenerateObjectKey builds a unique object key under folder, keeping the
// extension of originalName.
func GenerateObjectKey(folder, originalName string) string {
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.New().String()[:8], path.Ext(originalName))

	if folder != "" {
		return path.Join(folder, filename)
	}
	return filename
}
