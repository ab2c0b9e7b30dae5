package core

// error_messages.go maps technical errors to coded, user-facing messages.
//
// When an import fails, operators quote the code from the run summary or
// the HTTP response; this reference tells support what happened.
//
// # Connection Errors (CONN001-CONN099)
//
//	CONN001 - Connection refused: The database server is not reachable
//	          Action: Check DB_HOST/DB_PORT and that the server is running
//	          Patterns: "connection refused", "no such host"
//
//	CONN002 - Authentication failed: The database rejected the credentials
//	          Action: Check DB_USER and DB_PASSWORD
//	          Patterns: "access denied", "password authentication failed"
//
//	CONN003 - Connection failed: Retries exhausted
//	          Action: Check database availability and retry the run
//	          Patterns: any *ConnectionError not matched above
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A unique constraint other than the conflict key was violated
//	DB002 - Foreign key: A referenced parent row does not exist
//	DB003 - Value too long: A value exceeds its column length
//	DB004 - Deadlock: The database aborted a conflicting transaction
//	DB005 - Timeout: A statement or transaction timed out
//	DB006 - Missing table: The target table does not exist
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL000 - Validation failed: Any other validation diagnostic
//	VAL001 - Empty source: The spreadsheet has no data rows
//	VAL002 - Missing column: A required column is absent
//	VAL003 - Null values: A required column has empty cells
//	VAL004 - Duplicate keys: The unique key repeats
//
// # Configuration and Source Errors
//
//	MAP001 - Invalid mapping: An entity profile or mapping is malformed
//	SRC001 - Source missing: The expected spreadsheet is not in the data directory
//	SRC002 - Source unreadable: The spreadsheet could not be parsed
//	RUN001 - Run in progress: Another import run is active
//	RUN002 - Unknown group: No registered entity belongs to the requested group
//	RUN003 - No report: No import run has finished yet (HTTP API only)
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the logs for the
// original error.

import (
	"errors"
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

var (
	msgConnRefused = UserMessage{
		Message: "The database server is not reachable",
		Action:  "Check DB_HOST/DB_PORT and that the server is running",
		Code:    "CONN001",
	}
	msgConnAuth = UserMessage{
		Message: "The database rejected the credentials",
		Action:  "Check DB_USER and DB_PASSWORD",
		Code:    "CONN002",
	}
	msgConnFailed = UserMessage{
		Message: "Could not connect to the database after retrying",
		Action:  "Check database availability and retry the run",
		Code:    "CONN003",
	}
	msgMapping = UserMessage{
		Message: "An entity profile or mapping is misconfigured",
		Action:  "Fix the catalogue entry named in the error and restart",
		Code:    "MAP001",
	}
	msgSourceMissing = UserMessage{
		Message: "The expected spreadsheet was not found",
		Action:  "Place the file in the data directory or ignore if intentional",
		Code:    "SRC001",
	}
	msgSourceUnreadable = UserMessage{
		Message: "The spreadsheet could not be read",
		Action:  "Re-export the file as .xlsx or UTF-8 .csv with a header row",
		Code:    "SRC002",
	}
	msgValidation = UserMessage{
		Message: "The spreadsheet failed validation",
		Action:  "Check the diagnostics listed for the entity",
		Code:    "VAL000",
	}
	msgRunInProgress = UserMessage{
		Message: "An import run is already in progress",
		Action:  "Wait for the current run to finish and try again",
		Code:    "RUN001",
	}
	msgUnknownGroup = UserMessage{
		Message: "No entities are registered for the requested group",
		Action:  "List the groups with the entities command or GET /api/groups",
		Code:    "RUN002",
	}
)

// connectionPatterns refine a *ConnectionError.
var connectionPatterns = []errorPattern{
	{pattern: "connection refused", msg: msgConnRefused},
	{pattern: "no such host", msg: msgConnRefused},
	{pattern: "access denied", msg: msgConnAuth},
	{pattern: "password authentication failed", msg: msgConnAuth},
}

// validationPatterns classify a *ValidationError by its diagnostics.
var validationPatterns = []errorPattern{
	{
		pattern: "is empty",
		msg: UserMessage{
			Message: "The spreadsheet has no data rows",
			Action:  "Check that the correct file was exported",
			Code:    "VAL001",
		},
	},
	{
		pattern: "not found in",
		msg: UserMessage{
			Message: "A required column is missing",
			Action:  "Check the column headers against the entity's required fields",
			Code:    "VAL002",
		},
	},
	{
		pattern: "null value",
		msg: UserMessage{
			Message: "A required column has empty cells",
			Action:  "Fill in or remove the incomplete rows",
			Code:    "VAL003",
		},
	},
	{
		pattern: "duplicate value",
		msg: UserMessage{
			Message: "The unique key repeats within the file",
			Action:  "Remove duplicate rows; the diagnostic lists the first values",
			Code:    "VAL004",
		},
	},
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate entry",
		msg: UserMessage{
			Message: "A value must be unique but already exists",
			Action:  "Check unique columns other than the conflict key",
			Code:    "DB001",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A value must be unique but already exists",
			Action:  "Check unique columns other than the conflict key",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A value must be unique but already exists",
			Action:  "Check unique columns other than the conflict key",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "A referenced record does not exist",
			Action:  "Import parent entities first or fix the referencing ids",
			Code:    "DB002",
		},
	},
	{
		pattern: "too long",
		msg: UserMessage{
			Message: "A value is longer than its column allows",
			Action:  "Add a string coercion with a max length for the column",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The database was busy with a conflicting operation",
			Action:  "Re-run the import; upserts are safe to repeat",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "A database operation timed out",
			Action:  "Lower IMPORT_BATCH_SIZE or re-run the import",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "A database operation timed out",
			Action:  "Lower IMPORT_BATCH_SIZE or re-run the import",
			Code:    "DB005",
		},
	},
	{
		pattern: "doesn't exist",
		msg: UserMessage{
			Message: "The target table does not exist",
			Action:  "Enable IMPORT_CREATE_TABLES or create the table first",
			Code:    "DB006",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "The target table does not exist",
			Action:  "Enable IMPORT_CREATE_TABLES or create the table first",
			Code:    "DB006",
		},
	},
	{
		pattern: "no such table",
		msg: UserMessage{
			Message: "The target table does not exist",
			Action:  "Enable IMPORT_CREATE_TABLES or create the table first",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the import log for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors from this package are classified first; anything else is
// matched against known patterns (case-insensitive).
//
// Example:
//
//	err := &PersistenceError{Entity: "cities", Err: errors.New("Error 1452: Cannot add or update a child row: a foreign key constraint fails")}
//	msg := MapError(err)
//	// msg.Code == "DB002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		connErr *ConnectionError
		mapErr  *MappingError
		srcErr  *SourceError
		valErr  *ValidationError
	)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return msgRunInProgress
	case errors.Is(err, ErrUnknownGroup):
		return msgUnknownGroup
	case errors.Is(err, ErrSourceNotFound):
		return msgSourceMissing
	case errors.As(err, &mapErr):
		return msgMapping
	case errors.As(err, &srcErr):
		return msgSourceUnreadable
	case errors.As(err, &valErr):
		if msg, ok := matchPattern(valErr.Error(), validationPatterns); ok {
			return msg
		}
		return msgValidation
	case errors.As(err, &connErr):
		if msg, ok := matchPattern(connErr.Error(), connectionPatterns); ok {
			return msg
		}
		return msgConnFailed
	}

	if msg, ok := matchPattern(err.Error(), errorPatterns); ok {
		return msg
	}
	return defaultMessage
}

func matchPattern(s string, patterns []errorPattern) (UserMessage, bool) {
	s = strings.ToLower(s)
	for _, ep := range patterns {
		if strings.Contains(s, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
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

// IsUserFacing reports whether an error maps to a specific code rather
// than the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
