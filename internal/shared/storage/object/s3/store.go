package s3

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"vault-backend/internal/shared/storage/object"
	"vault-backend/internal/shared/util"
)

// Options configures the S3-backed object store.
type Options struct {
	Region          string
	Bucket          string
	Prefix          string
	KMSKeyID        string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL overrides the default virtual-hosted URL prefix, for
	// CDN or custom-domain deployments.
	PublicBaseURL string
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	prefix    string
	region    string
	kmsKeyID  string
	publicURL string
}

// New creates an S3-backed object store. Missing bucket or region is a
// configuration error surfaced at startup, not at upload time.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if strings.TrimSpace(opts.Region) == "" {
		return nil, fmt.Errorf("s3 region is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    opts.Bucket,
		prefix:    strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		region:    opts.Region,
		kmsKeyID:  strings.TrimSpace(opts.KMSKeyID),
		publicURL: strings.TrimRight(opts.PublicBaseURL, "/"),
	}, nil
}

// Store uploads the reader contents under the user's namespace. A transient
// put failure is retried once before the upload is failed.
func (s *Store) Store(ctx context.Context, userID, fileName, contentType string, r io.Reader) (object.Locator, int64, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return object.Locator{}, 0, fmt.Errorf("sanitize file name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return object.Locator{}, 0, err
	}

	userKey := util.HashUserKey(userID)
	finalName := fmt.Sprintf("%s_%s", uniquePrefix(), sanitizedName)
	objectKey := s.applyPrefix(path.Join(userKey, finalName))

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		// The reader is exhausted mid-stream after a failed multipart
		// upload, so a retry is only safe if nothing was consumed yet.
		if counter.n > 0 || ctx.Err() != nil {
			return object.Locator{}, 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
		}
		if _, err := s.uploader.Upload(ctx, input); err != nil {
			return object.Locator{}, 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
		}
	}

	publicURL := s.objectURL(objectKey)
	if publicURL == "" || objectKey == "" {
		// Never fall back to guessing one from the other.
		return object.Locator{}, 0, fmt.Errorf("s3 store produced incomplete locator for bucket=%s", s.bucket)
	}

	loc := object.Locator{
		Provider:     object.ProviderS3,
		PublicURL:    publicURL,
		DeleteKey:    objectKey,
		ResourceKind: object.ResourceKindFor(contentType),
	}
	return loc, counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, loc object.Locator) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(loc.DeleteKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, loc.DeleteKey, err)
	}
	return out.Body, nil
}

// Delete removes a stored object. A missing key is not an error.
func (s *Store) Delete(ctx context.Context, loc object.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(loc.DeleteKey),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, loc.DeleteKey, err)
	}
	return nil
}

func (s *Store) applyPrefix(key string) string {
	cleanKey := strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return cleanKey
	}
	return s.prefix + "/" + cleanKey
}

func (s *Store) objectURL(objectKey string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + objectKey
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func uniquePrefix() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}

var _ object.ObjectStore = (*Store)(nil)
