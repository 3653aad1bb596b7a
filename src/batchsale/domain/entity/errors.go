package entity

import "errors"

var (
	// Line Editor / Add To Sale
	ErrCandidateIncomplete   = errors.New("item name and quantity are required for the current item")
	ErrBuyerFieldRequired    = errors.New("buyer field is required")
	ErrStockItemNotFound     = errors.New("selected item not found in stock")
	ErrItemAlreadySelected   = errors.New("item already selected in this batch")
	ErrInsufficientStock     = errors.New("insufficient stock available")
	ErrInvalidQuantity       = errors.New("quantity must be a whole number greater than 0")
	ErrInvalidPrice          = errors.New("price must be greater than or equal to 0")
	ErrStockIDRequired       = errors.New("stock id is required")
	ErrProductNameRequired   = errors.New("product name is required")
	ErrRemoteCommitFailed    = errors.New("error recording sale")
	ErrPendingCommitMismatch = errors.New("another line has a pending commit")
	ErrNoPendingCommit       = errors.New("no pending commit")

	// Final Save
	ErrPaymentMethodRequired    = errors.New("payment method is required")
	ErrUnknownPaymentMethod     = errors.New("unknown payment method")
	ErrEmptyBatch               = errors.New("batch sale must have at least one item")
	ErrPendingCommitOutstanding = errors.New("a line commit is still pending")
	ErrRemoteSaveFailed         = errors.New("error saving sales")

	// Sesión
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrSnapshotNotReady     = errors.New("stock snapshot is not loaded")
	ErrSessionNotFound      = errors.New("batch sale session not found")
)
