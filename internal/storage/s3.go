package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/config"
)

// Asset describes a media object hosted on the object store.
type Asset struct {
	URL  string
	Key  string
	Size int64
}

// S3Relay uploads local temp files to an S3-compatible service and removes
// remote objects during entity delete cascades.
type S3Relay struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
	baseURL  string
}

// NewS3Relay configures an uploader and client targeting the provided
// object store.
func NewS3Relay(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Relay, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 relay: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Relay{
		uploader: uploader,
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload transfers the local file to the object store and returns its
// public location and size. The local temp file is removed whether or not
// the transfer succeeded. An empty path is a no-op returning a zero Asset.
func (r *S3Relay) Upload(ctx context.Context, localPath string) (Asset, error) {
	if strings.TrimSpace(localPath) == "" {
		return Asset{}, nil
	}
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open upload %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Asset{}, fmt.Errorf("stat upload %s: %w", localPath, err)
	}

	key := uuid.NewString() + strings.ToLower(path.Ext(localPath))

	_, err = r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("s3 relay upload %s: %w", key, err)
	}

	return Asset{URL: r.publicURL(key), Key: key, Size: info.Size()}, nil
}

// Delete removes the remote object backing the provided public URL. Unknown
// or empty URLs are ignored.
func (r *S3Relay) Delete(ctx context.Context, assetURL string) error {
	key := r.keyFromURL(assetURL)
	if key == "" {
		return nil
	}

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 relay delete %s: %w", key, err)
	}

	return nil
}

func (r *S3Relay) publicURL(key string) string {
	if r.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key)
}

func (r *S3Relay) keyFromURL(assetURL string) string {
	assetURL = strings.TrimSpace(assetURL)
	if assetURL == "" {
		return ""
	}
	if r.baseURL != "" && strings.HasPrefix(assetURL, r.baseURL+"/") {
		return strings.TrimPrefix(assetURL, r.baseURL+"/")
	}
	return strings.TrimLeft(path.Base(assetURL), "/")
}
