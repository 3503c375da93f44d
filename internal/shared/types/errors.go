package types

import "errors"

var (
	ErrMissingCredentials = errors.New("amazon credentials not set. Run `led-sales portal` or fill the .env file first")
	ErrUnsupportedBackend = errors.New("unsupported display backend. Use one of: auto, real, emu, png")
)
