// Package sentinel holds the facts stores report about their records.
// Services translate them into domain errors; validation failures use
// pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound: no record at the key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed: create-if-absent found a record at the key.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInsufficient: a debit would take a balance below zero.
	ErrInsufficient = errors.New("insufficient balance")
	// ErrExpired: a scoped record, such as a held price quote, outlived its window.
	ErrExpired = errors.New("expired")
)
