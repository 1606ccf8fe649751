package genai

import "errors"

var (
	ErrUnavailable     = errors.New("generation provider unavailable")
	ErrInvalidResponse = errors.New("generation provider returned invalid response")
)
