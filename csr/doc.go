// Package csr provides utilities for creating and inspecting
// Certificate Signing Requests (CSRs) as defined by RFC 2986.
//
// This package supports:
//   - RSA and EC key generation
//   - CSR creation with a Distinguished Name and IDNA encoded DNS SANs
//   - passphrase protected key and CSR persistence in PEM format
//   - CSR parsing, optional self-signature verification, and extraction
//     of the Common Name and Subject Alternative Names in stored order
//
// Nothing is generated or written as a side effect of importing the package;
// every operation is an explicit call.
package csr
