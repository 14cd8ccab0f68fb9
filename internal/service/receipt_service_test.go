package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/testutil"
)

func receiptImageForTest(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func receiptServiceForTest(t *testing.T) (*ReceiptService, *testutil.MockReceiptRepository, *domain.Journal, *domain.Transaction) {
	t.Helper()
	receiptRepo := testutil.NewMockReceiptRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	journalRepo := testutil.NewMockJournalRepository()

	journal := journalForServiceTest(t)
	journalRepo.Create(journal)
	txn := transactionOnJournal(t, journal, 42)
	transactionRepo.AddTransaction(txn)

	return NewReceiptService(receiptRepo, transactionRepo, journalRepo), receiptRepo, journal, txn
}

func TestReceiptService_AttachReceiptStoresVariants(t *testing.T) {
	service, receiptRepo, journal, txn := receiptServiceForTest(t)

	updated, err := service.AttachReceipt(context.Background(), journal.OwnerID, txn.ID, receiptImageForTest(t, 1200, 900), "receipt.jpg")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.ReceiptPath == nil {
		t.Fatal("receipt path must be recorded")
	}
	if len(receiptRepo.Objects) != 3 {
		t.Errorf("stored objects = %d, want thumb/display/original", len(receiptRepo.Objects))
	}
	for path := range receiptRepo.Objects {
		if !strings.HasPrefix(path, "journal/"+journal.ID.String()) {
			t.Errorf("object path %q must be scoped to the journal", path)
		}
	}
}

func TestReceiptService_AttachReceiptValidation(t *testing.T) {
	service, _, journal, txn := receiptServiceForTest(t)
	ctx := context.Background()

	if _, err := service.AttachReceipt(ctx, journal.OwnerID, txn.ID, receiptImageForTest(t, 10, 10), "tiny.jpg"); err != ErrReceiptTooSmall {
		t.Errorf("expected ErrReceiptTooSmall, got %v", err)
	}
	if _, err := service.AttachReceipt(ctx, journal.OwnerID, txn.ID, receiptImageForTest(t, 100, 100), "receipt.pdf"); err != ErrInvalidReceiptFormat {
		t.Errorf("expected ErrInvalidReceiptFormat, got %v", err)
	}
	if _, err := service.AttachReceipt(ctx, journal.OwnerID, txn.ID, []byte("not an image"), "receipt.jpg"); err != ErrInvalidReceiptData {
		t.Errorf("expected ErrInvalidReceiptData, got %v", err)
	}
	if _, err := service.AttachReceipt(ctx, domain.NewUserID(), txn.ID, receiptImageForTest(t, 100, 100), "receipt.jpg"); !errors.Is(err, domain.ErrJournalNotAccessible) {
		t.Errorf("expected ErrJournalNotAccessible, got %v", err)
	}
}

func TestReceiptService_GetAndDeleteReceipt(t *testing.T) {
	service, receiptRepo, journal, txn := receiptServiceForTest(t)
	ctx := context.Background()

	if _, err := service.GetReceiptURLs(ctx, journal.OwnerID, txn.ID); err != ErrNoReceipt {
		t.Fatalf("expected ErrNoReceipt, got %v", err)
	}

	if _, err := service.AttachReceipt(ctx, journal.OwnerID, txn.ID, receiptImageForTest(t, 400, 300), "receipt.jpg"); err != nil {
		t.Fatal(err)
	}

	urls, err := service.GetReceiptURLs(ctx, journal.OwnerID, txn.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if urls.ThumbnailURL == "" || urls.DisplayURL == "" || urls.OriginalURL == "" {
		t.Error("all variant URLs must be presigned")
	}

	cleared, err := service.DeleteReceipt(ctx, journal.OwnerID, txn.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cleared.ReceiptPath != nil {
		t.Error("receipt path must be cleared")
	}
	if len(receiptRepo.Objects) != 0 {
		t.Errorf("stored objects = %d, want 0 after delete", len(receiptRepo.Objects))
	}
}

func TestReceiptService_DisabledWithoutStorage(t *testing.T) {
	service := NewReceiptService(nil, testutil.NewMockTransactionRepository(), testutil.NewMockJournalRepository())

	if service.IsEnabled() {
		t.Fatal("service without storage must report disabled")
	}
	if _, err := service.AttachReceipt(context.Background(), domain.NewUserID(), domain.NewTransactionID(), nil, "x.jpg"); err != ErrReceiptStorageNotConfigured {
		t.Errorf("expected ErrReceiptStorageNotConfigured, got %v", err)
	}
}
