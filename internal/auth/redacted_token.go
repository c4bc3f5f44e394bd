package auth

// RedactedToken wraps an access token so that it cannot leak through fmt, logs or JSON.
//
//	token := auth.NewRedactedToken("secret-token-value")
//	fmt.Println(token)           // prints: [REDACTED]
//	actualValue := token.Value() // returns: "secret-token-value"
type RedactedToken struct {
	value string
}

// NewRedactedToken creates a new RedactedToken wrapping the given value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the actual token value. Only use it to build a request header.
func (t RedactedToken) Value() string {
	return t.value
}

// String implements fmt.Stringer.
func (t RedactedToken) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (t RedactedToken) GoString() string {
	return "auth.RedactedToken{[REDACTED]}"
}

// IsEmpty returns true if the token value is empty.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler.
func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
