package domain

import "errors"

var (
	ErrUserAlreadyExists  = errors.New("user with this email or username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTrackNotFound       = errors.New("track not found")
	ErrLicenseTypeNotFound = errors.New("license type not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")

	// ErrDuplicatePurchase covers both the fast-path existence check and the
	// unique-constraint violation raised when two confirms race. The
	// constraint is the real guard; the check only gives nicer errors.
	ErrDuplicatePurchase = errors.New("you already own this track with this license type")

	ErrPaymentNotSucceeded   = errors.New("payment was not successful")
	ErrDownloadQuotaExceeded = errors.New("download limit exceeded")
)
