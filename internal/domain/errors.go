package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountRequired = errors.New("transaction requires an account")

	// Transaction errors
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrInvalidAmount            = errors.New("amount must be a positive finite number")
	ErrInvalidTransactionType   = errors.New("unknown transaction type")
	ErrInvalidCurrency          = errors.New("unknown currency code")
	ErrTransferAccountRequired  = errors.New("transfer requires a destination account")
	ErrTransferAccountForbidden = errors.New("only transfers may set a destination account")
	ErrSameAccount              = errors.New("cannot transfer to same account")

	// Recurring template errors
	ErrTemplateNotFound  = errors.New("recurring template not found")
	ErrInvalidPaymentDay = errors.New("payment day must be between 1 and 31")

	// Extraction errors
	ErrExtractionNotReady = errors.New("extraction did not succeed")
	ErrExtractionEmpty    = errors.New("extraction carries no data")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
