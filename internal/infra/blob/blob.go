// Package blob selects and re-exports the artifact storage backends used by
// the report export pipeline.
package blob

import (
	"context"
	"fmt"
	"os"

	"caseflow/internal/infra/blob/core"
	"caseflow/internal/infra/blob/fs"
	"caseflow/internal/infra/blob/memory"
	"caseflow/internal/infra/blob/s3"
)

// Re-exported backend-neutral types.
type (
	Store            = core.Store
	Driver           = core.Driver
	Info             = core.Info
	PutOptions       = core.PutOptions
	SignedURLOptions = core.SignedURLOptions
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrUnsupported aliases the backend-neutral sentinel.
var ErrUnsupported = core.ErrUnsupported

// Open selects a Store implementation using environment variables.
//
//	CASEFLOW_BLOB_DRIVER: fs|s3|memory (default fs)
//	CASEFLOW_BLOB_FS_ROOT: directory root when driver=fs (default ./artifacts)
//	(S3 specific variables are documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("CASEFLOW_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fs.New(os.Getenv("CASEFLOW_BLOB_FS_ROOT"))
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
