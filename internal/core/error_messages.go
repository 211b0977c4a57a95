package core

// error_messages.go maps technical errors to user-facing messages with codes
// support staff can look up.
//
// # Error Codes Reference
//
// # Grid Errors (GRID001-GRID099)
//
//	GRID001 - Grid not found: The requested grid is not configured
//	          Patterns: "grid not found"
//
//	GRID002 - View expired: The view is unknown or has expired
//	          Patterns: "view not found"
//
//	GRID003 - Unknown action: The bulk action is not available
//	          Patterns: "unknown bulk action"
//
//	GRID004 - Read-only grid: The grid's rows cannot be deleted
//	          Patterns: "source is read-only"
//
//	GRID005 - Too many views: The server has too many open views
//	          Patterns: "too many open views"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Column not found: The request names an unknown column
//	         Patterns: "column not found"
//
//	REQ002 - Invalid setting: A display setting is out of range
//	         Patterns: "invalid page size", "invalid font size",
//	         "invalid theme", "invalid comparison mode", "cannot be hidden"
//
//	REQ003 - Not a number column: Statistics need a number column
//	         Patterns: "not a number column"
//
//	REQ004 - Invalid request: The request body could not be read
//	         Patterns: "invalid request body"
//
//	REQ005 - Request cancelled
//	         Patterns: "context canceled"
//
//	REQ006 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - System busy: Too many exports in progress
//	         Patterns: "too many concurrent exports"
//
//	EXP002 - Too many rows: The export exceeds the row limit
//	         Patterns: "exceeds export row limit"
//
// # Chart and Form Errors (CHT001, FRM001, FRM002)
//
//	CHT001 - Unsupported chart: The chart type is not supported
//	         Patterns: "unsupported chart type"
//
//	FRM001 - Invalid form: One or more form fields are invalid
//	         Patterns: "form validation failed"
//
//	FRM002 - No form: The grid does not declare a form
//	         Patterns: "form not found"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Timeout
//
// # Authentication (AUTH001-AUTH002)
//
//	AUTH001 - Missing API key
//	          Patterns: "missing api key"
//
//	AUTH002 - Invalid API key
//	          Patterns: "invalid api key"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var invalidSetting = UserMessage{
	Message: "A display setting is invalid",
	Action:  "Choose one of the offered values",
	Code:    "REQ002",
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// Grid errors
	{
		pattern: "grid not found",
		msg: UserMessage{
			Message: "Grid not found",
			Action:  "Pick a grid from the list",
			Code:    "GRID001",
		},
	},
	{
		pattern: "view not found",
		msg: UserMessage{
			Message: "This view has expired",
			Action:  "Reload the page to open a new view",
			Code:    "GRID002",
		},
	},
	{
		pattern: "unknown bulk action",
		msg: UserMessage{
			Message: "This action is not available",
			Action:  "Choose another action",
			Code:    "GRID003",
		},
	},
	{
		pattern: "source is read-only",
		msg: UserMessage{
			Message: "Rows in this grid cannot be deleted",
			Action:  "Contact an administrator to change the data",
			Code:    "GRID004",
		},
	},
	{
		pattern: "too many open views",
		msg: UserMessage{
			Message: "The server has too many open views",
			Action:  "Please wait a moment and try again",
			Code:    "GRID005",
		},
	},

	// Request errors
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column not found",
			Action:  "Verify the column name is correct",
			Code:    "REQ001",
		},
	},
	{pattern: "invalid page size", msg: invalidSetting},
	{pattern: "invalid font size", msg: invalidSetting},
	{pattern: "invalid theme", msg: invalidSetting},
	{pattern: "invalid comparison mode", msg: invalidSetting},
	{pattern: "cannot be hidden", msg: invalidSetting},
	{
		pattern: "not a number column",
		msg: UserMessage{
			Message: "Statistics are only available for number columns",
			Action:  "Choose a number column",
			Code:    "REQ003",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Please try again",
			Code:    "REQ004",
		},
	},

	// Export errors
	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "System is busy processing other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP001",
		},
	},
	{
		pattern: "exceeds export row limit",
		msg: UserMessage{
			Message: "Too many rows to export",
			Action:  "Add filters to export fewer rows",
			Code:    "EXP002",
		},
	},

	// Chart and form errors
	{
		pattern: "unsupported chart type",
		msg: UserMessage{
			Message: "This chart type is not supported",
			Action:  "Choose line, bar, pie, scatter or gauge",
			Code:    "CHT001",
		},
	},
	{
		pattern: "form validation failed",
		msg: UserMessage{
			Message: "Some fields are invalid",
			Action:  "Correct the highlighted fields and submit again",
			Code:    "FRM001",
		},
	},
	{
		pattern: "form not found",
		msg: UserMessage{
			Message: "This grid has no form",
			Action:  "Pick a grid that offers a form",
			Code:    "FRM002",
		},
	},

	// Database errors
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
			Message: "Operation timed out",
			Action:  "Add filters to load fewer rows or try again later",
			Code:    "DB003",
		},
	},

	// Request lifecycle
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ006",
		},
	},

	// Authentication
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "An API key is required",
			Action:  "Send your key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "The API key is not valid",
			Action:  "Check the key or ask an administrator for a new one",
			Code:    "AUTH002",
		},
	},

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
// If no pattern matches, a generic fallback message with code ERR000 is
// returned.
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

// IsUserFacing reports whether err matches a known pattern.
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
