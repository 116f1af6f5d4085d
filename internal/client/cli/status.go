package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophauth/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.authService.Session(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'gophauth login' to authenticate.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("User ID:  %s\n", session.UserID)
	c.io.Printf("Email:    %s\n", session.Email)
	c.io.Printf("Username: %s\n", session.Username)

	if session.ExpiresAt == 0 {
		return nil
	}

	expiresAt := time.Unix(session.ExpiresAt, 0)
	c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

	if _, err := c.authService.Token(ctx); errors.Is(err, auth.ErrSessionExpired) {
		c.io.Println("⚠️  Token has expired. Please login again.")
		return nil
	}
	c.io.Printf("Time remaining: %s\n", time.Until(expiresAt).Round(time.Second))

	return nil
}

func (c *Cli) runMe(ctx context.Context) error {
	_, token, err := c.session(ctx)
	if err != nil {
		return err
	}

	user, err := c.apiClient.Profile(ctx, token)
	if err != nil {
		return err
	}

	c.io.Printf("User ID:  %s\n", user.ID)
	c.io.Printf("Email:    %s\n", user.Email)
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("Created:  %s\n", user.CreatedAt.Format(time.RFC3339))
	c.io.Printf("Updated:  %s\n", user.UpdatedAt.Format(time.RFC3339))

	return nil
}
