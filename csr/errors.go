package csr

import (
	"github.com/cockroachdb/errors"
)

// Error markers. Returned errors carry the context message
// and can be matched with errors.Is.
var (
	// ErrValidation is returned for malformed input, including CSRs that do not parse
	ErrValidation = errors.New("validation error")
	// ErrEncoding is returned when a domain can not be IDNA encoded
	ErrEncoding = errors.New("encoding error")
	// ErrSigning is returned when the CSR can not be signed with the key
	ErrSigning = errors.New("signing error")
	// ErrIO is returned when a file can not be read or written
	ErrIO = errors.New("io error")
	// ErrDecryption is returned when a key can not be decrypted with the passphrase
	ErrDecryption = errors.New("decryption error")
)

// invalidCSRMessage prefixes all CSR parsing failures
const invalidCSRMessage = "CSR presented is not valid"

func mark(err error, marker error, msg string) error {
	return errors.Mark(errors.WithMessage(err, msg), marker)
}

func markf(err error, marker error, format string, args ...any) error {
	return errors.Mark(errors.WithMessagef(err, format, args...), marker)
}

func newf(marker error, format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), marker)
}
