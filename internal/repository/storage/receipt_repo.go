package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ReceiptRepository defines the interface for receipt object storage
type ReceiptRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateBasePath creates a unique base object path for a receipt. Variant
// suffixes are appended by the caller.
// Layout: journal/<journalID>/transaction/<transactionID>/<uuid>
func GenerateBasePath(journalID, transactionID string) string {
	return path.Join("journal", journalID, "transaction", transactionID, uuid.New().String())
}

// VariantPath appends a variant suffix to a receipt base path
func VariantPath(basePath, variant string) string {
	return fmt.Sprintf("%s_%s.jpg", basePath, variant)
}
