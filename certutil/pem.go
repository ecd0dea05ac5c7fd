package certutil

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/cockroachdb/errors"
)

// PEM block types
const (
	PEMTypeCSR          = "CERTIFICATE REQUEST"
	PEMTypeCSRLegacy    = "NEW CERTIFICATE REQUEST"
	PEMTypeRSAKey       = "RSA PRIVATE KEY"
	PEMTypeECKey        = "EC PRIVATE KEY"
	PEMTypePKCS8Key     = "PRIVATE KEY"
	PEMTypePublicKey    = "PUBLIC KEY"
	pemTypeECParameters = "EC PARAMETERS"
)

// EncodeCSRToPEM returns PEM encoded certificate request
func EncodeCSRToPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  PEMTypeCSR,
		Bytes: der,
	})
}

// ParseCSRFromPEM returns certificate request parsed from PEM.
// Both CERTIFICATE REQUEST and NEW CERTIFICATE REQUEST blocks are accepted.
func ParseCSRFromPEM(csrPEM []byte) (*x509.CertificateRequest, error) {
	block, _ := pem.Decode(csrPEM)
	if block == nil {
		return nil, errors.New("unable to parse PEM")
	}

	if block.Type != PEMTypeCSRLegacy && block.Type != PEMTypeCSR {
		return nil, errors.Errorf("unsupported type in PEM: %s", block.Type)
	}

	csrv, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to parse")
	}
	return csrv, nil
}

// EncodePublicKeyToPEM returns PEM encoded public key
func EncodePublicKeyToPEM(pubKey crypto.PublicKey) ([]byte, error) {
	asn1Bytes, err := x509.MarshalPKIXPublicKey(pubKey)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var pemkey = &pem.Block{
		Type:  PEMTypePublicKey,
		Bytes: asn1Bytes,
	}

	b := bytes.NewBuffer([]byte{})

	err = pem.Encode(b, pemkey)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b.Bytes(), nil
}

// privateKeyBlock returns PEM block with the traditional OpenSSL encoding of the key:
// PKCS#1 for RSA, SEC 1 for ECDSA
func privateKeyBlock(priv crypto.PrivateKey) (*pem.Block, error) {
	switch priv := priv.(type) {
	case *rsa.PrivateKey:
		return &pem.Block{
			Type:  PEMTypeRSAKey,
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		}, nil
	case *ecdsa.PrivateKey:
		der, err := x509.MarshalECPrivateKey(priv)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return &pem.Block{
			Type:  PEMTypeECKey,
			Bytes: der,
		}, nil
	default:
		return nil, errors.Errorf("unsupported key: %T", priv)
	}
}

// EncodePrivateKeyToPEM returns PEM encoded private key
func EncodePrivateKeyToPEM(priv crypto.PrivateKey) ([]byte, error) {
	block, err := privateKeyBlock(priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(block), nil
}

// EncryptPrivateKeyToPEM returns PEM encoded private key,
// encrypted with AES-256-CBC under the password.
func EncryptPrivateKeyToPEM(priv crypto.PrivateKey, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password is required")
	}

	block, err := privateKeyBlock(priv)
	if err != nil {
		return nil, err
	}

	encrypted, err := x509.EncryptPEMBlock(rand.Reader, block.Type, block.Bytes, password, x509.PEMCipherAES256) //nolint:staticcheck
	if err != nil {
		return nil, errors.WithMessage(err, "failed to encrypt private key")
	}
	return pem.EncodeToMemory(encrypted), nil
}

// IsEncryptedPEM returns true if the first key block in PEM is encrypted
func IsEncryptedPEM(keyPEM []byte) bool {
	block := firstKeyBlock(keyPEM)
	return block != nil && x509.IsEncryptedPEMBlock(block) //nolint:staticcheck
}

// ParsePrivateKeyPEM parses and returns a PEM-encoded private
// key. The private key may be either an unencrypted PKCS#8, PKCS#1,
// or elliptic private key.
func ParsePrivateKeyPEM(keyPEM []byte) (key crypto.Signer, err error) {
	return ParsePrivateKeyPEMWithPassword(keyPEM, nil)
}

// ParsePrivateKeyPEMWithPassword parses and returns a PEM-encoded private
// key. The private key may be a potentially encrypted PKCS#8, PKCS#1,
// or elliptic private key.
func ParsePrivateKeyPEMWithPassword(keyPEM []byte, password []byte) (key crypto.Signer, err error) {
	keyDER, err := GetKeyDERFromPEM(keyPEM, password)
	if err != nil {
		return nil, err
	}

	return ParsePrivateKeyDER(keyDER)
}

// firstKeyBlock skips any EC PARAMETERS blocks,
// openssl includes them by default.
func firstKeyBlock(in []byte) *pem.Block {
	var block *pem.Block
	for {
		block, in = pem.Decode(in)
		if block == nil || block.Type != pemTypeECParameters {
			break
		}
	}
	return block
}

// GetKeyDERFromPEM parses a PEM-encoded private key and returns DER-format key bytes.
func GetKeyDERFromPEM(in []byte, password []byte) ([]byte, error) {
	keyDER := firstKeyBlock(in)
	if keyDER == nil {
		return nil, errors.Errorf("unable to decode private key")
	}

	if procType, ok := keyDER.Headers["Proc-Type"]; ok && strings.Contains(procType, "ENCRYPTED") {
		if len(password) == 0 {
			return nil, errors.Errorf("encrypted private key")
		}
		der, err := x509.DecryptPEMBlock(keyDER, password) //nolint:staticcheck
		if err != nil {
			return nil, errors.WithMessage(err, "failed to decrypt private key")
		}
		return der, nil
	}
	return keyDER.Bytes, nil
}

// ParsePrivateKeyDER parses a PKCS #1, PKCS #8, ECDSA, or Ed25519 DER-encoded
// private key. The key must not be in PEM format.
func ParsePrivateKeyDER(keyDER []byte) (key crypto.Signer, err error) {
	generalKey, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		generalKey, err = x509.ParsePKCS1PrivateKey(keyDER)
		if err != nil {
			generalKey, err = x509.ParseECPrivateKey(keyDER)
			if err != nil {
				// the parser error is not included,
				// it may leak information about the key
				return nil, errors.Errorf("unable to parse private key")
			}
		}
	}

	switch k := generalKey.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	case ed25519.PrivateKey:
		return k, nil
	}

	return nil, errors.Errorf("unable to parse private key")
}
