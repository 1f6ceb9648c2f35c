// Package idgen generates short prefixed identifiers for correlating log
// lines across the message pipeline and HTTP handlers.
package idgen

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	size     = 12
)

// EventID returns a correlation id for one consumed message.
func EventID() string { return "evt-" + must() }

// RequestID returns a correlation id for one HTTP request.
func RequestID() string { return "req-" + must() }

func must() string {
	id, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		// Only reachable if the system entropy source is broken.
		panic(err)
	}
	return id
}
