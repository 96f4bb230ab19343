// Package common defines shared sentinel errors and small helpers used
// across filehost components. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Registry errors.
	ErrUserExists     = errors.New("user already exists")
	ErrStorageCorrupt = errors.New("user journal corrupt")

	// Authentication errors. ErrAuthFailed deliberately covers both an
	// unknown name and a wrong password so neither case leaks.
	ErrAuthFailed     = errors.New("auth failed")
	ErrSessionMissing = errors.New("session missing")

	// File namespace errors.
	ErrInvalidFilename = errors.New("invalid filename")
	ErrFileMissing     = errors.New("file missing")

	// Generic flow control.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInternal           = errors.New("internal error")
)
