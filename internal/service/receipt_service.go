package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/repository/storage"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	DisplayWidth     = 800
	JPEGQuality      = 85

	// PresignExpiry bounds how long a receipt link stays valid
	PresignExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat        = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData          = errors.New("invalid image data")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
	ErrNoReceipt                   = errors.New("transaction has no receipt")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// receiptVariants are the stored sizes per receipt
var receiptVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0}, // 0 means keep original size
}

// ReceiptURLs carries presigned links for each stored variant
type ReceiptURLs struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ReceiptService attaches receipt images to transactions: validation, resize
// variants, S3 upload, presigned reads
type ReceiptService struct {
	storage         storage.ReceiptRepository
	transactionRepo domain.TransactionRepository
	journalRepo     domain.JournalRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, transactionRepo domain.TransactionRepository, journalRepo domain.JournalRepository) *ReceiptService {
	return &ReceiptService{
		storage:         storage,
		transactionRepo: transactionRepo,
		journalRepo:     journalRepo,
	}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateReceipt validates image format and size
func (s *ReceiptService) ValidateReceipt(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}

	return img, nil
}

// AttachReceipt validates and uploads the receipt variants and records the
// base object path on the transaction
func (s *ReceiptService) AttachReceipt(ctx context.Context, userID domain.UserID, transactionID domain.TransactionID, data []byte, filename string) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	txn, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	// Replace any previous receipt
	if txn.ReceiptPath != nil {
		s.deleteVariants(ctx, *txn.ReceiptPath)
	}

	basePath := storage.GenerateBasePath(txn.JournalID.String(), txn.ID.String())

	uploaded := make([]string, 0, len(receiptVariants))
	for _, variant := range receiptVariants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := variantPath(basePath, variant.name)
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			// Best-effort cleanup of variants uploaded so far
			for _, p := range uploaded {
				_ = s.storage.Delete(ctx, p)
			}
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	txn.ReceiptPath = &basePath
	return s.transactionRepo.Update(txn)
}

// GetReceiptURLs returns presigned links for the transaction's receipt
func (s *ReceiptService) GetReceiptURLs(ctx context.Context, userID domain.UserID, transactionID domain.TransactionID) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	txn, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}
	if txn.ReceiptPath == nil {
		return nil, ErrNoReceipt
	}

	urls := &ReceiptURLs{}
	targets := map[string]*string{
		"thumb":    &urls.ThumbnailURL,
		"display":  &urls.DisplayURL,
		"original": &urls.OriginalURL,
	}
	for variant, target := range targets {
		url, err := s.storage.GeneratePresignedURL(ctx, variantPath(*txn.ReceiptPath, variant), PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s variant: %w", variant, err)
		}
		*target = url
	}
	return urls, nil
}

// DeleteReceipt removes the receipt variants and clears the transaction's
// receipt path
func (s *ReceiptService) DeleteReceipt(ctx context.Context, userID domain.UserID, transactionID domain.TransactionID) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	txn, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}
	if txn.ReceiptPath == nil {
		return txn, nil
	}

	s.deleteVariants(ctx, *txn.ReceiptPath)
	txn.ReceiptPath = nil
	return s.transactionRepo.Update(txn)
}

// deleteVariants removes all stored variants under a base path, best effort
func (s *ReceiptService) deleteVariants(ctx context.Context, basePath string) {
	for _, variant := range receiptVariants {
		_ = s.storage.Delete(ctx, variantPath(basePath, variant.name))
	}
}

func variantPath(basePath, variant string) string {
	return storage.VariantPath(basePath, variant)
}

// GetContentType returns the content type for a file extension
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedReceiptExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
