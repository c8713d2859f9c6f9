package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID returns a random 20 character row identifier
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, 20)
}

// NewRequestID returns a short random identifier for log correlation
func NewRequestID() string {
	id, err := gonanoid.Generate(idCharset, 10)
	if err != nil {
		return "unknown"
	}

	return id
}
