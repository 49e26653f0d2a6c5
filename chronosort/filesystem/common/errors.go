package common

import "errors"

// Common error types used across filesystem packages
var (
	ErrPathEmpty    = errors.New("path cannot be empty")
	ErrPathTooLong  = errors.New("path too long (max 4096 characters)")
	ErrPathInvalid  = errors.New("path contains invalid characters")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNotExist     = errors.New("path does not exist")
)
