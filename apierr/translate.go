package apierr

import (
	"errors"
	"net/http"
)

// setupUnavailableMessage replaces whatever detail the backend attaches to a
// SetupError; the raw text leaks internal host names.
const setupUnavailableMessage = "System is unavailable for provisioning"

type translation struct {
	kind    Kind
	message string // non-empty overrides the backend message
}

var translations = map[string]translation{
	"InvalidHostnameError":           {kind: KindInvalidArgument},
	"InvalidParamError":              {kind: KindInvalidArgument},
	"NotFoundError":                  {kind: KindNotFound},
	"NoAvailableServersError":        {kind: KindInsufficientCapacity},
	"SetupError":                     {kind: KindServiceUnavailable, message: setupUnavailableMessage},
	"TransitionConflictError":        {kind: KindInvalidState},
	"TransitionToCurrentStatusError": {kind: KindInvalidState},
	"UnacceptableTransitionError":    {kind: KindInvalidState},
	"UnknownDatasetError":            {kind: KindInvalidArgument},
	"UnknownPackageError":            {kind: KindInvalidArgument},
	"RetriesExceededError":           {kind: KindInternal},
}

// Translate maps a backend error envelope onto the uniform taxonomy.
//
// Codes outside the table pass the original message and status through
// unchanged, with one exception: a generic 400 is remapped to
// InvalidArgument, because these backends conflate bad client input with
// conflict semantics.
func Translate(be *BackendError) *Error {
	if be == nil {
		return nil
	}
	if tr, ok := translations[be.Code]; ok {
		msg := tr.message
		if msg == "" {
			msg = be.text()
		}
		return New(tr.kind, be.Code, msg)
	}
	if be.StatusCode == http.StatusBadRequest {
		return New(KindInvalidArgument, be.Code, be.text())
	}
	status := be.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{Kind: KindPassthrough, StatusCode: status, Code: be.Code, Message: be.text()}
}

// TranslateErr translates err when it carries a backend envelope. Other
// failures (network, context cancellation) are returned unchanged; the bool
// reports whether a translation happened, which is what decides negative
// caching.
func TranslateErr(err error) (error, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return Translate(be), true
	}
	return err, false
}
