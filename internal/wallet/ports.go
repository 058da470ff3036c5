// Package wallet defines the ports to the wallet backend. The backend owns
// all business logic (balance arithmetic, the transaction ledger, auth);
// this application only consumes it through these interfaces.
package wallet

import (
	"context"

	"ehuza/internal/core"
)

type (
	RegisterInput struct {
		Name     string
		Email    string
		Password string
	}

	LoginInput struct {
		Email    string
		Password string
	}

	// AuthResult is returned by register and login. Token is present only
	// on success and becomes the session credential.
	AuthResult struct {
		Success bool
		Message string
		Token   string
		UserID  string
	}

	TransactionInput struct {
		Amount      core.Money
		Description string
	}

	// ActionResult is the backend acknowledgment of a deposit or withdraw.
	ActionResult struct {
		Success bool
		Message string
		Balance core.Money
	}

	// TransactionPage is one server-driven window over the ledger.
	// Page and TotalPages drive the pager controls verbatim.
	TransactionPage struct {
		Transactions []core.Transaction
		Total        int
		Page         int
		TotalPages   int
	}

	// ImageUpload carries a profile picture submitted with the edit form.
	ImageUpload struct {
		Filename    string
		ContentType string
		Data        []byte
	}

	// UpdateProfilePayload is a tagged payload builder: optional fields are
	// pointers and are only serialized when present, never assembled ad hoc.
	UpdateProfilePayload struct {
		Name     string
		Email    string
		Password *string
		Image    *ImageUpload
	}
)

// Ports for the backend adapter.
type (
	Authenticator interface {
		Register(ctx context.Context, in RegisterInput) (AuthResult, error)
		Login(ctx context.Context, in LoginInput) (AuthResult, error)
		// RequestPasswordReset asks the backend to mail a reset link.
		// The returned string is the backend's user-facing message.
		RequestPasswordReset(ctx context.Context, email string) (string, error)
		ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	}

	ProfileService interface {
		Profile(ctx context.Context) (core.Profile, error)
		UpdateProfile(ctx context.Context, p UpdateProfilePayload) (core.Profile, error)
	}

	WalletService interface {
		Balance(ctx context.Context) (core.Money, error)
		Deposit(ctx context.Context, in TransactionInput) (ActionResult, error)
		Withdraw(ctx context.Context, in TransactionInput) (ActionResult, error)
	}

	TransactionReader interface {
		Transactions(ctx context.Context, page, limit int) (TransactionPage, error)
		MonthlySummary(ctx context.Context) ([]core.MonthlyPoint, error)
	}
)

// Backend bundles every port the UI needs.
type Backend interface {
	Authenticator
	ProfileService
	WalletService
	TransactionReader
}

// HasPassword reports whether the optional password sub-section was filled in.
func (p UpdateProfilePayload) HasPassword() bool {
	return p.Password != nil && *p.Password != ""
}

// HasImage reports whether a replacement image was submitted.
func (p UpdateProfilePayload) HasImage() bool {
	return p.Image != nil && len(p.Image.Data) > 0
}
