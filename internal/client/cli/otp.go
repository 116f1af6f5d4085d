package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iudanet/gophauth/internal/client/api"
	"github.com/iudanet/gophauth/internal/validation"
)

// otpDigits - длина кода, который выдает сервер
const otpDigits = 6

func (c *Cli) runOtpEnroll(ctx context.Context) error {
	session, token, err := c.session(ctx)
	if err != nil {
		return err
	}

	secret, err := c.apiClient.GenerateOtp(ctx, token, session.UserID)
	if api.IsStatus(err, http.StatusBadRequest) {
		return fmt.Errorf("two-factor authentication is already enabled, run 'gophauth otp-disable' first")
	}
	if err != nil {
		return err
	}

	c.io.Println("✓ Two-factor authentication enabled")
	c.io.Println()
	c.io.Printf("Secret: %s\n", secret.OtpKey)
	c.io.Printf("URI:    %s\n", secret.QRCodeURI)
	c.io.Println()
	c.io.Println("Add the secret or URI to your authenticator app, then run 'gophauth otp-verify'.")

	return nil
}

func (c *Cli) runOtpShow(ctx context.Context) error {
	session, token, err := c.session(ctx)
	if err != nil {
		return err
	}

	secret, err := c.apiClient.GetOtp(ctx, token, session.UserID)
	if api.IsStatus(err, http.StatusNotFound) {
		c.io.Println("Two-factor authentication is not enabled.")
		return nil
	}
	if err != nil {
		return err
	}

	c.io.Printf("Secret:  %s\n", secret.OtpKey)
	if secret.QRCodeURI != "" {
		c.io.Printf("URI:     %s\n", secret.QRCodeURI)
	}
	c.io.Printf("Enabled: %s\n", secret.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

// runOtpVerify: код берется из аргумента или запрашивается.
// Проверка не требует действующего токена, только user id сессии.
func (c *Cli) runOtpVerify(ctx context.Context, args []string) error {
	session, err := c.authService.Session(ctx)
	if err != nil {
		return err
	}

	var code string
	if len(args) > 0 {
		code = args[0]
	} else {
		code, err = c.io.ReadInput("OTP code: ")
		if err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}
	}

	if err := validation.ValidateOtpCode(code, otpDigits); err != nil {
		return err
	}

	ok, err := c.authService.VerifyOtp(ctx, session.UserID, code)
	if err != nil {
		if api.IsStatus(err, http.StatusTooManyRequests) {
			return fmt.Errorf("too many attempts, try again later")
		}
		return err
	}
	if !ok {
		return errors.New("invalid OTP code")
	}

	c.io.Println("✓ Code accepted, session refreshed")
	return nil
}

func (c *Cli) runOtpDisable(ctx context.Context) error {
	session, token, err := c.session(ctx)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.DeleteOtp(ctx, token, session.UserID)
	if err != nil {
		return err
	}

	if !resp.Success {
		c.io.Println("Two-factor authentication was not enabled.")
		return nil
	}
	c.io.Println("✓ Two-factor authentication disabled")
	return nil
}
