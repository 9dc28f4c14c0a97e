package clustertls

import (
	"errors"
	"fmt"
)

// MalformedKind identifies the closed set of structurally-wrong-input
// failures. The set is deliberately small so callers can switch over it
// exhaustively.
type MalformedKind string

const (
	// KindCertificateInKeySlot means a certificate was supplied where a
	// private key was expected, the classic swapped cert/key
	// misconfiguration.
	KindCertificateInKeySlot MalformedKind = "certificate-in-key-slot"

	// KindUnsupportedPEMObject means the key material decoded to a PEM
	// object that is not a supported private key format.
	KindUnsupportedPEMObject MalformedKind = "unsupported-pem-object"

	// KindInvalidCertificate means certificate bytes were not valid DER,
	// PEM, or PKCS#7 X.509 material.
	KindInvalidCertificate MalformedKind = "invalid-certificate"
)

// ErrMalformedInput matches any MalformedInputError via errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports that parsing produced a structurally wrong
// or unsupported artifact. It is always fatal to context construction.
type MalformedInputError struct {
	Kind   MalformedKind
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed input (%s): %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("malformed input (%s): %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying error.
func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}

// Is matches ErrMalformedInput, or another MalformedInputError of the
// same kind.
func (e *MalformedInputError) Is(target error) bool {
	if target == ErrMalformedInput {
		return true
	}
	other, ok := target.(*MalformedInputError)
	return ok && other.Kind == e.Kind
}

// CryptoError reports that the underlying crypto provider rejected the
// assembled material, for example an unsupported key algorithm or a key
// that does not match its certificate.
type CryptoError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto provider failure during %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *CryptoError) Unwrap() error {
	return e.Cause
}
