package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrOperationFailed      = errors.New("operation failed")
	ErrReadDatabaseRow      = errors.New("failed to read database row")
	ErrInvalidExecContext   = errors.New("invalid sql execution context")
	ErrUserNotFound         = errors.New("user not found")
	ErrNoActiveSubscription = errors.New("no active subscription")

	// Webhook processing errors. Signature and malformed-payload failures are the
	// only conditions reported back to a provider with a non-200 status.
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrMissingTransactionID = errors.New("missing transaction id")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrVerificationFailed   = errors.New("provider verification failed")
	ErrAmountMismatch       = errors.New("amount or currency mismatch")
	ErrConfirmNotSupported  = errors.New("provider does not support server-side confirmation")
)
