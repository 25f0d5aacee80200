// Package core provides the business logic for BMS log analysis.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors raised before a file is analyzed:
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Action: Split the log or raise INGEST_MAX_FILE_SIZE
//	          Patterns: "file too large"
//
//	FILE002 - Empty file: The file has no content
//	          Action: Check that the logger finished writing the file
//	          Patterns: "empty file"
//
//	FILE003 - No file: No file was selected
//	          Action: Please select one or more log files to analyze
//	          Patterns: "no file provided"
//
//	FILE004 - Too many files: The request carries more files than allowed
//	          Action: Upload the logs in smaller groups
//	          Patterns: "too many files"
//
//	FILE005 - File not found: The file disappeared before it could be read
//	          Action: Copy the file into the drop directory again
//	          Patterns: "no such file"
//
// # Parse Errors (PARSE001-PARSE099)
//
// Outcomes of analysis that produced no usable table:
//
//	PARSE001 - Unrecognized log: No data or error header in the first 100 lines
//	           Action: Upload a data log (Sample,DateTime header) or an error log
//	           Patterns: "unrecognized log"
//
//	PARSE002 - Parse failure: The header row could not be read
//	           Action: Open the file and check the header line for stray quotes
//	           Patterns: "parse failure"
//
// # Analysis Errors (ANL001-ANL099)
//
// Errors from the analysis service itself:
//
//	ANL001 - System busy: Too many analyses in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many analyses"
//
//	ANL002 - Not found: The requested analysis does not exist
//	         Action: Check the analysis ID or list recent analyses
//	         Patterns: "analysis not found"
//
//	ANL003 - History disabled: No database is configured
//	         Action: Set DATABASE_URL to keep analysis history
//	         Patterns: "history is disabled"
//
//	ANL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	ANL005 - Request timeout: Request timed out
//	         Action: Try fewer or smaller files
//	         Patterns: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - Timeout: Database operation timed out
//	        Action: Please try again later
//	        Patterns: "timeout"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the log into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Check that the logger finished writing the file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select one or more log files to analyze",
			Code:    "FILE003",
		},
	},
	{
		pattern: "too many files",
		msg: UserMessage{
			Message: "Too many files in one request",
			Action:  "Upload the logs in smaller groups",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file could not be found",
			Action:  "Copy the file into the drop directory again",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Parse Outcomes (PARSE001-PARSE002)
	// =========================================================================
	{
		pattern: "unrecognized log",
		msg: UserMessage{
			Message: "File is not a recognized BMS log",
			Action:  "Upload a data log (Sample,DateTime header) or an error log",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "parse failure",
		msg: UserMessage{
			Message: "The log header could not be read",
			Action:  "Open the file and check the header line for stray quotes",
			Code:    "PARSE002",
		},
	},

	// =========================================================================
	// Analysis Errors (ANL001-ANL005)
	// =========================================================================
	{
		pattern: "too many analyses",
		msg: UserMessage{
			Message: "System is busy analyzing other files",
			Action:  "Please wait a moment and try again",
			Code:    "ANL001",
		},
	},
	{
		pattern: "analysis not found",
		msg: UserMessage{
			Message: "Analysis not found",
			Action:  "Check the analysis ID or list recent analyses",
			Code:    "ANL002",
		},
	},
	{
		pattern: "history is disabled",
		msg: UserMessage{
			Message: "Analysis history is not available",
			Action:  "Set DATABASE_URL to keep analysis history",
			Code:    "ANL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "ANL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try fewer or smaller files",
			Code:    "ANL005",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Database operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(ErrTooManyAnalyses)
//	// msg.Code == "ANL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
