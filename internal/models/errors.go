package models

import (
	"errors"
	"fmt"
)

var (
	ErrExtraction    = errors.New("text extraction failed")
	ErrEmbedding     = errors.New("embedding generation failed")
	ErrWriteFailed   = errors.New("store write failed")
	ErrQueryFailed   = errors.New("store query failed")
	ErrDeleteFailed  = errors.New("store delete failed")
	ErrConfiguration = errors.New("invalid configuration")
	ErrEmptyQuery    = errors.New("query text is empty")
)

// StoreError is returned by every store backend. It matches both its Kind
// (ErrWriteFailed, ErrQueryFailed, ErrDeleteFailed) and the backend cause.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func NewStoreError(op string, kind, err error) *StoreError {
	return &StoreError{Op: op, Kind: kind, Err: err}
}
