package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Environment variables:
//
//	AUDITCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	AUDITCORE_BLOB_FS_ROOT: directory for the fs driver (default ./blobdata)
//	AUDITCORE_BLOB_FS_BASE_URL: public base URL for fs-served files (optional)
//	AUDITCORE_BLOB_S3_BUCKET: bucket name (required for s3)
//	AUDITCORE_BLOB_S3_REGION: region (default us-east-1)
//	AUDITCORE_BLOB_S3_ENDPOINT: custom endpoint, e.g. MinIO (optional)
//	AUDITCORE_BLOB_S3_PATH_STYLE: true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (optional, default chain)

// OpenFromEnv constructs a blob store from process environment.
func OpenFromEnv(ctx context.Context) (Store, error) {
	driver := Driver(os.Getenv("AUDITCORE_BLOB_DRIVER"))
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		root := os.Getenv("AUDITCORE_BLOB_FS_ROOT")
		if root == "" {
			root = "blobdata"
		}
		return NewFilesystem(root, os.Getenv("AUDITCORE_BLOB_FS_BASE_URL"))
	case DriverS3:
		bucket := os.Getenv("AUDITCORE_BLOB_S3_BUCKET")
		if bucket == "" {
			return nil, fmt.Errorf("AUDITCORE_BLOB_S3_BUCKET required for s3 driver")
		}
		return NewS3(ctx, S3Config{
			Bucket:    bucket,
			Region:    os.Getenv("AUDITCORE_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("AUDITCORE_BLOB_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("AUDITCORE_BLOB_S3_PATH_STYLE"), "true"),
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
