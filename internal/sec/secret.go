package sec

import (
	"fmt"
	"io"
	"log/slog"
)

const redacted = "[REDACTED]"

// Password is a plaintext password in flight. It redacts itself when
// formatted, logged or marshaled so it cannot leak through diagnostics; use
// string(p) where the raw value is required.
type Password string

// String satisfies [fmt.Stringer].
func (Password) String() string { return redacted }

// Format satisfies [fmt.Formatter] so %#v and friends are redacted too.
func (Password) Format(f fmt.State, _ rune) { _, _ = io.WriteString(f, redacted) }

// LogValue satisfies [slog.LogValuer].
func (Password) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalText satisfies [encoding.TextMarshaler]. Unmarshaling is untouched.
func (Password) MarshalText() ([]byte, error) { return []byte(redacted), nil }
