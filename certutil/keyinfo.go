package certutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"

	"github.com/cockroachdb/errors"
)

// KeyInfo provides information about the key
type KeyInfo struct {
	KeySize int
	Type    string
	Key     any
}

// NewKeyInfo returns *KeyInfo
func NewKeyInfo(k any) (*KeyInfo, error) {
	ki := &KeyInfo{Key: k}
	var pubKey crypto.PublicKey

	switch typ := k.(type) {
	case *rsa.PrivateKey:
		ki.KeySize = typ.N.BitLen()
		ki.Type = "RSA"
		return ki, nil
	case *ecdsa.PrivateKey:
		ki.Type = "ECDSA"
		ki.KeySize = typ.Curve.Params().BitSize
		return ki, nil
	case crypto.Signer:
		pubKey = typ.Public()
	default:
		pubKey = k
	}

	switch typ := pubKey.(type) {
	case *rsa.PublicKey:
		ki.KeySize = typ.N.BitLen()
		ki.Type = "RSA"
	case *ecdsa.PublicKey:
		ki.Type = "ECDSA"
		ki.KeySize = typ.Curve.Params().BitSize
	default:
		return nil, errors.Errorf("key not supported: %T", typ)
	}
	return ki, nil
}

// SHA256SignatureAlgorithm returns SHA-256 based signature algorithm for the key
func (ki *KeyInfo) SHA256SignatureAlgorithm() x509.SignatureAlgorithm {
	switch ki.Type {
	case "RSA":
		return x509.SHA256WithRSA
	case "ECDSA":
		return x509.ECDSAWithSHA256
	}
	return x509.UnknownSignatureAlgorithm
}
