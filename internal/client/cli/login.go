package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/gophauth/internal/client/auth"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println("Authenticating...")

	session, err := c.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", session.Username)
	if session.ExpiresAt > 0 {
		c.io.Printf("Token expires: %s\n", time.Unix(session.ExpiresAt, 0).Format(time.RFC3339))
	}

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	err := c.authService.Logout(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		c.io.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	c.io.Println("✓ Logged out. The token stays valid on the server until it expires.")
	return nil
}
