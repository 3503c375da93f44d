package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeForbidden            Code = "FORBIDDEN"
	CodeAuthorizationExpired Code = "AUTHORIZATION_EXPIRED"
	CodeUpstream             Code = "UPSTREAM_ERROR"
	CodeInternalInvariant    Code = "INTERNAL_INVARIANT"
)

type Metadata struct {
	Retryable     bool
	PublicMessage string
	ShortLabel    string
}

var metadataByCode = map[Code]Metadata{
	CodeInvalidArgument: {
		Retryable:     false,
		PublicMessage: "invalid argument",
		ShortLabel:    "ARG",
	},
	CodeForbidden: {
		Retryable:     true,
		PublicMessage: "upstream refused authorization",
		ShortLabel:    "403",
	},
	CodeAuthorizationExpired: {
		Retryable:     false,
		PublicMessage: "authorization expired",
		ShortLabel:    "AUTH",
	},
	CodeUpstream: {
		Retryable:     false,
		PublicMessage: "upstream unavailable",
		ShortLabel:    "NET",
	},
	CodeInternalInvariant: {
		Retryable:     false,
		PublicMessage: "internal error",
		ShortLabel:    "ERR",
	},
}

// MetadataFor returns the metadata of code, falling back to the internal one.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternalInvariant]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternalInvariant
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether any *Error in err's chain carries code.
func IsCode(err error, code Code) bool {
	for err != nil {
		typed := As(err)
		if typed == nil {
			return false
		}
		if typed.code == code {
			return true
		}
		err = typed.cause
	}
	return false
}

// CodeOf returns the code of the outermost *Error, or CodeInternalInvariant.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.code
	}
	return CodeInternalInvariant
}
