package handler

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
	"github.com/splitbook/splitbook-backend/internal/service"
)

// JournalHandler handles journal-related HTTP requests
type JournalHandler struct {
	journalService *service.JournalService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

// CreateJournalRequest represents the create journal request body
type CreateJournalRequest struct {
	Title    string `json:"title"`
	Currency string `json:"currency"`
}

// InviteCollaboratorRequest represents the invite collaborator request body
type InviteCollaboratorRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// LinkAccountRequest represents the link account request body
type LinkAccountRequest struct {
	AccountID string `json:"accountId"`
}

// UpdateTagsRequest represents the tag update request body
type UpdateTagsRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// SetApprovalRequirementRequest represents the approval requirement body
type SetApprovalRequirementRequest struct {
	RequiresApproval bool `json:"requiresApproval"`
}

// SetArchivedRequest represents the archive/unarchive request body
type SetArchivedRequest struct {
	Archived bool `json:"archived"`
}

// CollaboratorResponse represents a collaborator in API responses
type CollaboratorResponse struct {
	UserID     string `json:"userId"`
	Permission string `json:"permission"`
}

// TagResponse represents a journal tag in API responses
type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccountLinkResponse represents a linked account in API responses
type AccountLinkResponse struct {
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
}

// JournalResponse represents a journal in API responses
type JournalResponse struct {
	ID               string                 `json:"id"`
	OwnerID          string                 `json:"ownerId"`
	OwnerEmail       string                 `json:"ownerEmail"`
	Title            string                 `json:"title"`
	Currency         string                 `json:"currency"`
	CreatedAt        string                 `json:"createdAt"`
	Archived         bool                   `json:"archived"`
	RequiresApproval bool                   `json:"requiresApproval"`
	Collaborators    []CollaboratorResponse `json:"collaborators"`
	Tags             []TagResponse          `json:"tags"`
	AccountLinks     []AccountLinkResponse  `json:"accountLinks"`
	Repayments       []RepaymentResponse    `json:"repayments"`
}

// CreateJournal handles POST /api/v1/journals
func (h *JournalHandler) CreateJournal(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateJournalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	journal, err := h.journalService.CreateJournal(userID, req.Title, req.Currency)
	if err != nil {
		if errors.Is(err, domain.ErrJournalTitleRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "title", Message: "Title is required"},
			})
		}
		if errors.Is(err, domain.ErrCurrencyRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "currency", Message: "Currency is required"},
			})
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create journal")
		return NewInternalError(c, "Failed to create journal")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journal.ID.String()).
		Str("title", journal.Title).
		Msg("Journal created")

	return c.JSON(http.StatusCreated, toJournalResponse(journal))
}

// GetJournals handles GET /api/v1/journals
func (h *JournalHandler) GetJournals(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	journals, err := h.journalService.GetJournalsForUser(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get journals")
		return NewInternalError(c, "Failed to get journals")
	}

	response := make([]JournalResponse, len(journals))
	for i, journal := range journals {
		response[i] = toJournalResponse(journal)
	}
	return c.JSON(http.StatusOK, response)
}

// GetJournal handles GET /api/v1/journals/:id
func (h *JournalHandler) GetJournal(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	journal, err := h.journalService.GetJournal(userID, domain.JournalID(c.Param("id")))
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to get journal")
	}
	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// InviteCollaborator handles POST /api/v1/journals/:id/collaborators
func (h *JournalHandler) InviteCollaborator(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req InviteCollaboratorRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Email == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "email", Message: "Email is required"},
		})
	}

	journal, err := h.journalService.InviteCollaborator(userID, domain.JournalID(c.Param("id")), req.Email, domain.Permission(req.Permission))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPermission) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "permission", Message: "Permission must be read or write"},
			})
		}
		if errors.Is(err, domain.ErrSelfPermission) {
			return NewConflictError(c, "Cannot grant permission to yourself")
		}
		if errors.Is(err, domain.ErrOwnerPermissionGrant) {
			return NewConflictError(c, "Cannot grant owner permission to others")
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "No user with that email")
		}
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to invite collaborator")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journal.ID.String()).
		Str("permission", req.Permission).
		Msg("Collaborator invited")

	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// RemoveCollaborator handles DELETE /api/v1/journals/:id/collaborators/:userId
func (h *JournalHandler) RemoveCollaborator(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	removed, err := h.journalService.RemoveCollaborator(userID, domain.JournalID(c.Param("id")), domain.UserID(c.Param("userId")))
	if err != nil {
		if errors.Is(err, domain.ErrOwnerRemoval) {
			return NewConflictError(c, "Cannot remove the journal owner")
		}
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to remove collaborator")
	}
	if !removed {
		return NewNotFoundError(c, "Collaborator not found")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", c.Param("id")).
		Str("removed_user_id", c.Param("userId")).
		Msg("Collaborator removed")

	return c.NoContent(http.StatusNoContent)
}

// LinkAccount handles POST /api/v1/journals/:id/accounts
func (h *JournalHandler) LinkAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req LinkAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.AccountID == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}

	journal, err := h.journalService.LinkAccount(userID, domain.JournalID(c.Param("id")), domain.AccountID(req.AccountID))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrAccountAlreadyLinked) {
			return NewConflictError(c, "Account is already linked to this journal")
		}
		if errors.Is(err, domain.ErrJournalArchived) {
			return NewConflictError(c, "Journal is archived")
		}
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to link account")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journal.ID.String()).
		Str("account_id", req.AccountID).
		Msg("Account linked to journal")

	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// UnlinkAccount handles DELETE /api/v1/journals/:id/accounts/:accountId
func (h *JournalHandler) UnlinkAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	journal, err := h.journalService.UnlinkAccount(userID, domain.JournalID(c.Param("id")), domain.AccountID(c.Param("accountId")))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotLinked) {
			return NewNotFoundError(c, "Account is not linked to this journal")
		}
		if errors.Is(err, domain.ErrJournalArchived) {
			return NewConflictError(c, "Journal is archived")
		}
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to unlink account")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journal.ID.String()).
		Str("account_id", c.Param("accountId")).
		Msg("Account unlinked from journal")

	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// UpdateTags handles PATCH /api/v1/journals/:id/tags
func (h *JournalHandler) UpdateTags(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateTagsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	journal, err := h.journalService.UpdateTags(userID, domain.JournalID(c.Param("id")), req.Add, req.Remove)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to update tags")
	}

	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// SetApprovalRequirement handles PUT /api/v1/journals/:id/approval-requirement
func (h *JournalHandler) SetApprovalRequirement(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SetApprovalRequirementRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	journal, err := h.journalService.SetApprovalRequirement(userID, domain.JournalID(c.Param("id")), req.RequiresApproval)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to update approval requirement")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journal.ID.String()).
		Bool("requires_approval", journal.RequiresApproval).
		Msg("Approval requirement updated")

	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// SetArchived handles PUT /api/v1/journals/:id/archive
func (h *JournalHandler) SetArchived(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SetArchivedRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	journal, err := h.journalService.SetArchived(userID, domain.JournalID(c.Param("id")), req.Archived)
	if err != nil {
		return journalErrorResponse(c, err, userID, c.Param("id"), "Failed to update archive state")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("journal_id", journal.ID.String()).
		Bool("archived", journal.Archived).
		Msg("Journal archive state updated")

	return c.JSON(http.StatusOK, toJournalResponse(journal))
}

// journalErrorResponse maps the shared journal lookup/access errors every
// journal operation can return
func journalErrorResponse(c echo.Context, err error, userID domain.UserID, journalID, detail string) error {
	if errors.Is(err, domain.ErrJournalNotFound) {
		return NewNotFoundError(c, "Journal not found")
	}
	if errors.Is(err, domain.ErrJournalNotAccessible) {
		return NewForbiddenError(c, "Journal is not accessible")
	}
	log.Error().Err(err).Str("user_id", userID.String()).Str("journal_id", journalID).Msg(detail)
	return NewInternalError(c, detail)
}

// Helper function to convert domain.Journal to JournalResponse. Collection
// order is stabilized so responses are deterministic.
func toJournalResponse(journal *domain.Journal) JournalResponse {
	collaborators := journal.Collaborators()
	sort.Slice(collaborators, func(i, j int) bool {
		return collaborators[i].UserID < collaborators[j].UserID
	})
	collabResp := make([]CollaboratorResponse, len(collaborators))
	for i, collab := range collaborators {
		collabResp[i] = CollaboratorResponse{
			UserID:     collab.UserID.String(),
			Permission: string(collab.Permission),
		}
	}

	tags := journal.Tags()
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	tagResp := make([]TagResponse, len(tags))
	for i, tag := range tags {
		tagResp[i] = TagResponse{ID: tag.ID.String(), Name: tag.Name}
	}

	links := journal.AccountLinks()
	sort.Slice(links, func(i, j int) bool { return links[i].AccountID < links[j].AccountID })
	linkResp := make([]AccountLinkResponse, len(links))
	for i, link := range links {
		linkResp[i] = AccountLinkResponse{
			AccountID: link.AccountID.String(),
			OwnerID:   link.OwnerID.String(),
			CreatedAt: link.CreatedAt.Format(time.RFC3339),
		}
	}

	repayments := journal.Repayments()
	repaymentResp := make([]RepaymentResponse, len(repayments))
	for i, repayment := range repayments {
		repaymentResp[i] = toRepaymentResponse(repayment)
	}

	return JournalResponse{
		ID:               journal.ID.String(),
		OwnerID:          journal.OwnerID.String(),
		OwnerEmail:       journal.OwnerEmail,
		Title:            journal.Title,
		Currency:         journal.Currency,
		CreatedAt:        journal.CreatedAt.Format(time.RFC3339),
		Archived:         journal.Archived,
		RequiresApproval: journal.RequiresApproval,
		Collaborators:    collabResp,
		Tags:             tagResp,
		AccountLinks:     linkResp,
		Repayments:       repaymentResp,
	}
}
