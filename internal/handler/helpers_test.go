package handler

import (
	"context"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/middleware"
)

// setupAuthContext injects validated Auth0 claims into the request context the
// way the auth middleware would
func setupAuthContext(c echo.Context, auth0ID, email, name, picture string) {
	customClaims := &middleware.CustomClaims{
		Email:   email,
		Name:    name,
		Picture: picture,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// setupUserContext injects a resolved user ID into the request context the way
// the auth middleware would
func setupUserContext(c echo.Context, userID domain.UserID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// newTestJournal creates a journal aggregate for handler tests
func newTestJournal(ownerID domain.UserID, title string) *domain.Journal {
	journal, err := domain.NewJournal(ownerID, "owner@example.com", title, "EUR")
	if err != nil {
		panic(err)
	}
	return journal
}
