package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
	"github.com/splitbook/splitbook-backend/internal/service"
)

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptURLsResponse represents presigned receipt links
type ReceiptURLsResponse struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// UploadReceipt handles POST /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	// If storage isn't configured, don't attempt to process/upload
	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	txn, err := h.receiptService.AttachReceipt(c.Request().Context(), userID, domain.TransactionID(c.Param("id")), data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrInvalidReceiptFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrReceiptTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to upload receipt")
		}
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", txn.ID.String()).
		Msg("Receipt uploaded")

	return c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// GetReceipt handles GET /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}

	urls, err := h.receiptService.GetReceiptURLs(c.Request().Context(), userID, domain.TransactionID(c.Param("id")))
	if err != nil {
		if errors.Is(err, service.ErrNoReceipt) {
			return NewNotFoundError(c, "Transaction has no receipt")
		}
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to get receipt")
	}

	return c.JSON(http.StatusOK, ReceiptURLsResponse{
		ThumbnailURL: urls.ThumbnailURL,
		DisplayURL:   urls.DisplayURL,
		OriginalURL:  urls.OriginalURL,
	})
}

// DeleteReceipt handles DELETE /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}

	if _, err := h.receiptService.DeleteReceipt(c.Request().Context(), userID, domain.TransactionID(c.Param("id"))); err != nil {
		return transactionErrorResponse(c, err, userID, c.Param("id"), "Failed to delete receipt")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("transaction_id", c.Param("id")).
		Msg("Receipt deleted")

	return c.NoContent(http.StatusNoContent)
}
