package portal

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// PhoneDirectory finds accounts by the phone stored in profiles.
type PhoneDirectory interface {
	PhoneRegistered(ctx context.Context, variants []string) (bool, error)
}

// EmailDirectory finds accounts by email in the hosted user list.
type EmailDirectory interface {
	EmailRegistered(ctx context.Context, email string) (bool, error)
}

// AccountDirectory answers existence checks for phones and emails.
type AccountDirectory struct {
	phones PhoneDirectory
	emails EmailDirectory
	region string
}

// NewAccountDirectory returns a directory. region normalizes national phones.
func NewAccountDirectory(phones PhoneDirectory, emails EmailDirectory, region string) *AccountDirectory {
	if region == "" {
		region = DefaultPhoneRegion
	}
	return &AccountDirectory{phones: phones, emails: emails, region: region}
}

// Exists implements ExistenceChecker.
func (d *AccountDirectory) Exists(ctx context.Context, kind ContactKind, value string) (bool, error) {
	value = strings.TrimSpace(value)

	switch kind {
	case ContactPhone:
		if d.phones == nil {
			return false, goerrors.New("phone directory not configured", goerrors.CategoryInternal)
		}
		return d.phones.PhoneRegistered(ctx, PhoneVariants(value, d.region))
	case ContactEmail:
		if d.emails == nil {
			return false, goerrors.New("email directory not configured", goerrors.CategoryInternal)
		}
		return d.emails.EmailRegistered(ctx, strings.ToLower(value))
	}

	return false, goerrors.New("unknown contact kind", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"kind": kind})
}
