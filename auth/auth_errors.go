package auth

import "errors"

var (
	ErrUnknownAccessCode = errors.New("unknown access code")
	ErrMissingToken      = errors.New("missing access token")
	ErrUndecodableToken  = errors.New("token payload could not be decoded")
)
