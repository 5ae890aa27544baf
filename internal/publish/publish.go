package publish

import (
	"context"
	"fmt"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configure the S3-compatible report store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (o Options) validate() error {
	if o.Endpoint == "" {
		return fmt.Errorf("publish endpoint is required")
	}
	if o.Bucket == "" {
		return fmt.Errorf("publish bucket is required")
	}
	if o.AccessKey == "" || o.SecretKey == "" {
		return fmt.Errorf("publish credentials are required")
	}
	return nil
}

// Upload stores a rendered report file under the given object key.
func Upload(ctx context.Context, opts Options, key, filePath, contentType string) error {
	if err := opts.validate(); err != nil {
		return err
	}
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return err
	}
	_, err = mc.FPutObject(ctx, opts.Bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}
