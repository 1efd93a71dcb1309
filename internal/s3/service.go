package s3

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/flexprice/notebilling/internal/config"
	ierr "github.com/flexprice/notebilling/internal/errors"
)

const presignFallback = 30 * time.Minute

var contentTypes = map[DocumentKind]string{
	DocumentKindJPEG: "image/jpeg",
	DocumentKindPNG:  "image/png",
	DocumentKindJSON: "application/json",
}

// Service keeps delivery note scans and the recognition queue files in one bucket
type Service interface {
	// UploadDocument stores the document and returns its object key
	UploadDocument(ctx context.Context, document *Document) (string, error)
	GetPresignedUrl(ctx context.Context, key string) (string, error)
	// GetDocument fails with ErrNotFound when the object does not exist
	GetDocument(ctx context.Context, id string, kind DocumentKind, docType DocumentType) ([]byte, error)
	Exists(ctx context.Context, id string, kind DocumentKind, docType DocumentType) (bool, error)
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
}

// NewService returns nil when s3 is disabled; callers fall back to the file stores
func NewService(cfg *config.Configuration) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfig.WithRegion(cfg.S3.Region))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not load AWS credentials").
			Mark(ierr.ErrStorage)
	}
	return &s3ServiceImpl{config: &cfg.S3, client: s3.NewFromConfig(awsCfg)}, nil
}

// getObjectKey places images under the image prefix and queue files under the snapshot prefix
func (s *s3ServiceImpl) getObjectKey(id string, kind DocumentKind, docType DocumentType) (string, error) {
	var prefix string
	switch docType {
	case DocumentTypeDeliveryNoteImage:
		prefix = s.config.ImageKeyPrefix
	case DocumentTypeRecognitionSnapshot, DocumentTypeRecognitionHistory:
		prefix = s.config.SnapshotKeyPrefix
	default:
		return "", ierr.NewErrorf("unknown document type %q", docType).
			WithHint("Unsupported document type").
			Mark(ierr.ErrSystem)
	}
	return path.Join(prefix, id+"."+string(kind)), nil
}

func (s *s3ServiceImpl) object(key string) (*string, *string) {
	return aws.String(s.config.Bucket), aws.String(key)
}

func storageErr(err error, op, key string) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return ierr.WithError(err).
			WithHintf("Document %s not found", key).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Could not %s document", op).
		WithReportableDetails(map[string]any{"key": key}).
		Mark(ierr.ErrStorage)
}

func (s *s3ServiceImpl) Exists(ctx context.Context, id string, kind DocumentKind, docType DocumentType) (bool, error) {
	key, err := s.getObjectKey(id, kind, docType)
	if err != nil {
		return false, err
	}

	bucket, k := s.object(key)
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: bucket, Key: k}); err != nil {
		err = storageErr(err, "check", key)
		if ierr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, key string) (string, error) {
	expiry, err := time.ParseDuration(s.config.PresignExpiryDuration)
	if err != nil || expiry <= 0 {
		expiry = presignFallback
	}

	bucket, k := s.object(key)
	req, err := s3.NewPresignClient(s.client).PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: bucket, Key: k},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", storageErr(err, "presign", key)
	}
	return req.URL, nil
}

// UploadDocument overwrites any object under the same key
func (s *s3ServiceImpl) UploadDocument(ctx context.Context, document *Document) (string, error) {
	key, err := s.getObjectKey(document.ID, document.Kind, document.Type)
	if err != nil {
		return "", err
	}

	contentType, ok := contentTypes[document.Kind]
	if !ok {
		contentType = "application/octet-stream"
	}

	bucket, k := s.object(key)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      bucket,
		Key:         k,
		Body:        bytes.NewReader(document.Data),
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", storageErr(err, "upload", key)
	}
	return key, nil
}

func (s *s3ServiceImpl) GetDocument(ctx context.Context, id string, kind DocumentKind, docType DocumentType) ([]byte, error) {
	key, err := s.getObjectKey(id, kind, docType)
	if err != nil {
		return nil, err
	}

	bucket, k := s.object(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: k})
	if err != nil {
		return nil, storageErr(err, "read", key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, storageErr(err, "read", key)
	}
	return data, nil
}
