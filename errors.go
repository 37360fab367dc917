//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/spgo/enum"
	"github.com/obinnaokechukwu/spgo/internal/bindings"
)

// Common errors
var (
	// ErrNotLoaded indicates libspotify has not been loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrLibraryNotFound indicates libspotify could not be found on disk.
	ErrLibraryNotFound = bindings.ErrLibraryNotFound

	// ErrNoSession indicates an operation needs a session but none is attached.
	ErrNoSession = errors.New("spgo: no session attached")

	// ErrUnknownImageFormat is returned by Image.DataURI for non-JPEG images.
	ErrUnknownImageFormat = errors.New("spgo: unknown image format")

	// ErrInvalidImageID indicates an image id that is not 20 bytes long.
	ErrInvalidImageID = errors.New("spgo: image id must be 20 bytes")

	// ErrInvalidCountry indicates a country code that is not two uppercase
	// ASCII letters.
	ErrInvalidCountry = errors.New("spgo: country must be two uppercase letters")
)

// ErrorTypes is the namespace of libspotify's sp_error values.
var ErrorTypes = enum.FromTable("ErrorType", map[string]int{
	"OK":                        0,
	"BAD_API_VERSION":           1,
	"API_INITIALIZATION_FAILED": 2,
	"TRACK_NOT_PLAYABLE":        3,
	"BAD_APPLICATION_KEY":       5,
	"BAD_USERNAME_OR_PASSWORD":  6,
	"USER_BANNED":               7,
	"UNABLE_TO_CONTACT_SERVER":  8,
	"CLIENT_TOO_OLD":            9,
	"OTHER_PERMANENT":           10,
	"BAD_USER_AGENT":            11,
	"MISSING_CALLBACK":          12,
	"INVALID_INDATA":            13,
	"INDEX_OUT_OF_RANGE":        14,
	"USER_NEEDS_PREMIUM":        15,
	"OTHER_TRANSIENT":           16,
	"IS_LOADING":                17,
	"NO_STREAM_AVAILABLE":       18,
	"PERMISSION_DENIED":         19,
	"INBOX_IS_FULL":             20,
	"NO_CACHE":                  21,
	"NO_SUCH_USER":              22,
	"NO_CREDENTIALS":            23,
	"NETWORK_DISABLED":          24,
	"INVALID_DEVICE_ID":         25,
	"CANT_OPEN_TRACE_FILE":      26,
	"APPLICATION_BANNED":        27,
	"OFFLINE_TOO_MANY_TRACKS":   31,
	"OFFLINE_DISK_CACHE":        32,
	"OFFLINE_EXPIRED":           33,
	"OFFLINE_NOT_ALLOWED":       34,
	"OFFLINE_LICENSE_LOST":      35,
	"OFFLINE_LICENSE_ERROR":     36,
	"LASTFM_AUTH_ERROR":         39,
	"INVALID_ARGUMENT":          40,
	"SYSTEM_FAILURE":            41,
})

// Frequently checked error types.
var (
	ErrorOK              = ErrorTypes.MustLookup(0)
	ErrorIsLoading       = ErrorTypes.MustLookup(17)
	ErrorOtherPermanent  = ErrorTypes.MustLookup(10)
	ErrorOtherTransient  = ErrorTypes.MustLookup(16)
	ErrorNetworkDisabled = ErrorTypes.MustLookup(24)
	ErrorIndexOutOfRange = ErrorTypes.MustLookup(14)
)

// ErrorType returns the constant for a raw sp_error value.
func ErrorType(code int32) (*enum.Const, error) {
	return ErrorTypes.Lookup(int(code))
}

// Error is an error reported by libspotify.
type Error struct {
	Code    int32       // Raw sp_error value
	Type    *enum.Const // ErrorTypes constant, nil for codes this package does not know
	Message string      // libspotify's description
	Op      string      // Operation that failed
}

// Error implements the error interface.
func (e *Error) Error() string {
	name := fmt.Sprintf("code %d", e.Code)
	if e.Type != nil {
		name = e.Type.Name()
	}
	if e.Message == "" {
		return fmt.Sprintf("libspotify %s: %s", e.Op, name)
	}
	return fmt.Sprintf("libspotify %s: %s (%s)", e.Op, e.Message, name)
}

// NewError creates an Error from an sp_error value.
// Returns nil if code is OK.
func NewError(code int32, op string) error {
	if code == 0 {
		return nil
	}
	t, _ := ErrorType(code)
	msg := ""
	if native.loaded() {
		msg = native.errorMessage(code)
	}
	return &Error{Code: code, Type: t, Message: msg, Op: op}
}

// IsErrorType reports whether err is an Error of type t.
func IsErrorType(err error, t *enum.Const) bool {
	var spErr *Error
	if errors.As(err, &spErr) {
		return spErr.Type != nil && spErr.Type.Equal(t)
	}
	return false
}

// ErrorCode returns the sp_error value of err, or 0 if err is not an Error.
func ErrorCode(err error) int32 {
	var spErr *Error
	if errors.As(err, &spErr) {
		return spErr.Code
	}
	return 0
}
