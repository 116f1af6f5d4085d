// Package cli - команды клиента gophauth.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/gophauth/internal/client/iocli"
	"github.com/iudanet/gophauth/internal/client/storage"
	pkgapi "github.com/iudanet/gophauth/pkg/api"
)

// ErrUnknownCommand возвращается Run для неизвестной команды
var ErrUnknownCommand = errors.New("unknown command")

// AuthService - управление локальной сессией
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*pkgapi.UserResponse, error)
	Login(ctx context.Context, email, password string) (*storage.AuthData, error)
	VerifyOtp(ctx context.Context, userID, code string) (bool, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*storage.AuthData, error)
	Token(ctx context.Context) (string, error)
}

// API - запросы, которым нужен bearer токен
type API interface {
	Profile(ctx context.Context, token string) (*pkgapi.UserResponse, error)
	GenerateOtp(ctx context.Context, token, userID string) (*pkgapi.OtpSecretResponse, error)
	GetOtp(ctx context.Context, token, userID string) (*pkgapi.OtpSecretResponse, error)
	DeleteOtp(ctx context.Context, token, userID string) (*pkgapi.OtpDeleteResponse, error)
}

type Cli struct {
	io          iocli.IO
	authService AuthService
	apiClient   API
}

func New(io iocli.IO, authService AuthService, apiClient API) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		apiClient:   apiClient,
	}
}

// Run выполняет команду с аргументами args (без имени команды)
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "me":
		return c.runMe(ctx)
	case "otp-enroll":
		return c.runOtpEnroll(ctx)
	case "otp-show":
		return c.runOtpShow(ctx)
	case "otp-verify":
		return c.runOtpVerify(ctx, args)
	case "otp-disable":
		return c.runOtpDisable(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// PrintUsage печатает справку
func PrintUsage(out iocli.IO) {
	out.Println("gophauth client")
	out.Println()
	out.Println("Usage:")
	out.Println("  gophauth [OPTIONS] COMMAND [ARGS]")
	out.Println()
	out.Println("Options:")
	out.Println("  --version      Show version information")
	out.Println("  --server URL   Server URL (default: http://localhost:8080)")
	out.Println("  --db PATH      Path to local session database (default: gophauth-client.db)")
	out.Println()
	out.Println("Commands:")
	out.Println("  register            Register new user")
	out.Println("  login               Login with email and password")
	out.Println("  logout              Forget the local session")
	out.Println("  status              Show session status")
	out.Println("  me                  Show the profile stored on the server")
	out.Println("  otp-enroll          Enable TOTP two-factor authentication")
	out.Println("  otp-show            Show the enrolled TOTP secret")
	out.Println("  otp-verify [CODE]   Verify a TOTP code and refresh the session")
	out.Println("  otp-disable         Disable TOTP")
	out.Println()
	out.Println("Examples:")
	out.Println("  gophauth register")
	out.Println("  gophauth --server https://auth.example.com login")
	out.Println("  gophauth otp-verify 123456")
}

// session возвращает сессию и действующий токен
func (c *Cli) session(ctx context.Context) (*storage.AuthData, string, error) {
	auth, err := c.authService.Session(ctx)
	if err != nil {
		return nil, "", err
	}
	token, err := c.authService.Token(ctx)
	if err != nil {
		return nil, "", err
	}
	return auth, token, nil
}
