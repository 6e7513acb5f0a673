// errors.go: structured error handling for nubdb storage operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all engine, AOF, and compaction operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for nubdb operations.
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig   errors.ErrorCode = "NUBDB_INVALID_CONFIG"
	ErrCodeInvalidCapacity errors.ErrorCode = "NUBDB_INVALID_CAPACITY"

	// Operation errors (2xxx)
	ErrCodeEmptyKey     errors.ErrorCode = "NUBDB_EMPTY_KEY"
	ErrCodeInvalidKey   errors.ErrorCode = "NUBDB_INVALID_KEY"
	ErrCodeKeyNotFound  errors.ErrorCode = "NUBDB_KEY_NOT_FOUND"
	ErrCodeNotInteger   errors.ErrorCode = "NUBDB_NOT_INTEGER"

	// Log I/O errors (3xxx)
	ErrCodeAppendFailed errors.ErrorCode = "NUBDB_APPEND_FAILED"
	ErrCodeFlushFailed  errors.ErrorCode = "NUBDB_FLUSH_FAILED"
	ErrCodeOpenFailed   errors.ErrorCode = "NUBDB_OPEN_FAILED"
	ErrCodeRenameFailed errors.ErrorCode = "NUBDB_RENAME_FAILED"

	// Replay / corruption errors (4xxx), fatal at startup
	ErrCodeLogCorrupt   errors.ErrorCode = "NUBDB_LOG_CORRUPT"
	ErrCodeUnknownOp    errors.ErrorCode = "NUBDB_UNKNOWN_OP"
	ErrCodeKeyTooLarge  errors.ErrorCode = "NUBDB_KEY_TOO_LARGE"
	ErrCodeValueTooLarge errors.ErrorCode = "NUBDB_VALUE_TOO_LARGE"

	// Internal errors (5xxx)
	ErrCodeInternalError  errors.ErrorCode = "NUBDB_INTERNAL_ERROR"
	ErrCodePanicRecovered errors.ErrorCode = "NUBDB_PANIC_RECOVERED"
)

// Common error messages
const (
	msgInvalidCapacity = "invalid initial capacity: must be greater than 0"
	msgEmptyKey        = "key cannot be empty"
	msgInvalidKey      = "key contains disallowed characters"
	msgKeyNotFound     = "key not found in store"
	msgNotInteger      = "value is not a base-10 64-bit integer"
	msgAppendFailed    = "failed to append frame to log"
	msgFlushFailed     = "failed to flush log to stable storage"
	msgOpenFailed      = "failed to open log file"
	msgRenameFailed    = "failed to rename compacted log into place"
	msgLogCorrupt      = "log contains a malformed frame"
	msgUnknownOp       = "log frame has an unrecognized operation byte"
	msgKeyTooLarge     = "key exceeds maximum size"
	msgValueTooLarge   = "value exceeds maximum size"
	msgInternalError   = "internal engine error"
	msgPanicRecovered  = "panic recovered during operation"
)

// NewErrInvalidCapacity creates an error for an invalid initial capacity.
func NewErrInvalidCapacity(capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_capacity": capacity,
		"minimum_required":  1,
	})
}

// NewErrEmptyKey creates an error when a key is empty.
func NewErrEmptyKey(operation string) error {
	return errors.NewWithField(ErrCodeEmptyKey, msgEmptyKey, "operation", operation)
}

// NewErrInvalidKey creates an error when a key contains a disallowed byte
// (newline, carriage return, or space — reserved by the line protocol).
func NewErrInvalidKey(key string) error {
	return errors.NewWithField(ErrCodeInvalidKey, msgInvalidKey, "key", key)
}

// NewErrKeyNotFound creates an error when a key is not present (or expired).
func NewErrKeyNotFound(key string) error {
	return errors.NewWithField(ErrCodeKeyNotFound, msgKeyNotFound, "key", key)
}

// NewErrNotInteger creates an error for a stored value that is not a
// base-10 integer. Engine.Increment does not return it: it treats a
// non-numeric value as 0.
func NewErrNotInteger(key, value string) error {
	return errors.NewWithContext(ErrCodeNotInteger, msgNotInteger, map[string]interface{}{
		"key":   key,
		"value": value,
	})
}

// NewErrAppendFailed wraps an I/O error from appending a frame to the log.
func NewErrAppendFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeAppendFailed, msgAppendFailed).AsRetryable()
}

// NewErrFlushFailed wraps an I/O error from flushing the log.
func NewErrFlushFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeFlushFailed, msgFlushFailed).AsRetryable()
}

// NewErrOpenFailed wraps an I/O error from opening the log file.
func NewErrOpenFailed(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeOpenFailed, msgOpenFailed).
		WithContext("path", path)
}

// NewErrRenameFailed wraps an I/O error from the compactor's atomic rename.
func NewErrRenameFailed(from, to string, cause error) error {
	return errors.Wrap(cause, ErrCodeRenameFailed, msgRenameFailed).
		WithContext("from", from).
		WithContext("to", to)
}

// NewErrLogCorrupt creates a fatal startup error for a malformed frame.
func NewErrLogCorrupt(offset int64, details string) error {
	return errors.NewWithContext(ErrCodeLogCorrupt, msgLogCorrupt, map[string]interface{}{
		"offset":  offset,
		"details": details,
	}).WithSeverity("critical")
}

// NewErrUnknownOp creates a fatal startup error for an unrecognized op byte.
func NewErrUnknownOp(offset int64, op byte) error {
	return errors.NewWithContext(ErrCodeUnknownOp, msgUnknownOp, map[string]interface{}{
		"offset": offset,
		"op":     op,
	}).WithSeverity("critical")
}

// NewErrKeyTooLarge creates a fatal startup error for an oversized key.
func NewErrKeyTooLarge(offset int64, size int) error {
	return errors.NewWithContext(ErrCodeKeyTooLarge, msgKeyTooLarge, map[string]interface{}{
		"offset": offset,
		"size":   size,
		"max":    KeyMax,
	}).WithSeverity("critical")
}

// NewErrValueTooLarge creates a fatal startup error for an oversized value.
func NewErrValueTooLarge(offset int64, size int) error {
	return errors.NewWithContext(ErrCodeValueTooLarge, msgValueTooLarge, map[string]interface{}{
		"offset": offset,
		"size":   size,
		"max":    ValueMax,
	}).WithSeverity("critical")
}

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// NewErrPanicRecovered creates an error when a panic is recovered.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// IsNotFound checks if error is a key-not-found error.
func IsNotFound(err error) bool {
	return errors.HasCode(err, ErrCodeKeyNotFound)
}

// IsEmptyKey checks if error is an empty-key error.
func IsEmptyKey(err error) bool {
	return errors.HasCode(err, ErrCodeEmptyKey)
}

// IsCorruption checks if error reflects log corruption discovered at replay.
func IsCorruption(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeLogCorrupt || code == ErrCodeUnknownOp ||
			code == ErrCodeKeyTooLarge || code == ErrCodeValueTooLarge
	}
	return false
}

// IsRetryable checks if the error can be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var nubErr *errors.Error
	if goerrors.As(err, &nubErr) {
		return nubErr.Context
	}
	return nil
}
