package csr

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"os"
	"strings"
	"time"

	"github.com/effective-security/csrkit/certutil"
	"github.com/effective-security/csrkit/metricskey"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/csrkit", "csr")

// KeyAlgorithm is the asymmetric key algorithm
type KeyAlgorithm string

// Supported key algorithms
const (
	RSA KeyAlgorithm = "RSA"
	EC  KeyAlgorithm = "EC"
)

// Default key parameters
const (
	DefaultRSAKeySize = 2048
	DefaultECKeySize  = 384
	// RSAPublicExponent is used for all RSA keys
	RSAPublicExponent = 65537
)

// ParseKeyAlgorithm returns KeyAlgorithm by name,
// ECDSA is accepted as an alias of EC.
func ParseKeyAlgorithm(s string) (KeyAlgorithm, error) {
	switch strings.ToUpper(s) {
	case "RSA":
		return RSA, nil
	case "EC", "ECDSA":
		return EC, nil
	}
	return "", newf(ErrValidation, "unsupported key algorithm: %q", s)
}

// KeyRequest describes a key to generate
type KeyRequest struct {
	Algo string `json:"algo" yaml:"algo"`
	Size int    `json:"size,omitempty" yaml:"size,omitempty"`
}

// NewKeyRequest returns KeyRequest
func NewKeyRequest(algo KeyAlgorithm, size int) *KeyRequest {
	return &KeyRequest{Algo: string(algo), Size: size}
}

// Algorithm returns the key algorithm, RSA when not specified
func (kr *KeyRequest) Algorithm() (KeyAlgorithm, error) {
	if kr.Algo == "" {
		return RSA, nil
	}
	return ParseKeyAlgorithm(kr.Algo)
}

// KeySize returns the requested size, or the default for the algorithm
func (kr *KeyRequest) KeySize() int {
	if kr.Size > 0 {
		return kr.Size
	}
	algo, _ := kr.Algorithm()
	return values.Select(algo == EC, DefaultECKeySize, DefaultRSAKeySize)
}

// Validate the key request
func (kr *KeyRequest) Validate() error {
	algo, err := kr.Algorithm()
	if err != nil {
		return err
	}
	size := kr.KeySize()
	switch algo {
	case RSA:
		if size != 2048 && size != 3072 && size != 4096 {
			return newf(ErrValidation, "invalid RSA key size: %d", size)
		}
	case EC:
		if _, err := curve(size); err != nil {
			return err
		}
	}
	return nil
}

// Generate returns a new key
func (kr *KeyRequest) Generate() (*KeyPair, error) {
	algo, err := kr.Algorithm()
	if err != nil {
		return nil, err
	}
	return GenerateKey(algo, kr.KeySize())
}

func curve(size int) (elliptic.Curve, error) {
	switch size {
	case 256:
		return elliptic.P256(), nil
	case 384:
		return elliptic.P384(), nil
	case 521:
		return elliptic.P521(), nil
	}
	return nil, newf(ErrValidation, "invalid EC curve size: %d", size)
}

// KeyPair is a private key with its algorithm and size
type KeyPair struct {
	crypto.Signer

	Algo KeyAlgorithm
	Size int
}

// NewKeyPair returns KeyPair for RSA or ECDSA signer
func NewKeyPair(signer crypto.Signer) (*KeyPair, error) {
	ki, err := certutil.NewKeyInfo(signer)
	if err != nil {
		return nil, mark(err, ErrValidation, "unsupported key")
	}
	return &KeyPair{
		Signer: signer,
		Algo:   keyAlgorithm(ki),
		Size:   ki.KeySize,
	}, nil
}

// keyAlgorithm returns RSA or EC for the supported key types
func keyAlgorithm(ki *certutil.KeyInfo) KeyAlgorithm {
	return values.Select(ki.Type == "RSA", RSA, EC)
}

// metricAlgo returns the algo tag of the key metrics
func metricAlgo(pub crypto.PublicKey) string {
	ki, err := certutil.NewKeyInfo(pub)
	if err != nil {
		return "unknown"
	}
	return string(keyAlgorithm(ki))
}

// GenerateKey returns a new RSA or EC key.
// For RSA the size is the modulus length in bits, for EC the curve size.
// Zero size selects the default: RSA 2048 or EC P-384.
func GenerateKey(algo KeyAlgorithm, size int) (*KeyPair, error) {
	kr := NewKeyRequest(algo, size)
	if err := kr.Validate(); err != nil {
		return nil, err
	}
	algo, _ = kr.Algorithm()
	size = kr.KeySize()

	defer metricskey.PerfCSROperation.MeasureSince(time.Now(), string(algo), "genkey")

	var signer crypto.Signer
	var err error
	switch algo {
	case RSA:
		// rsa.GenerateKey uses 65537 exponent
		signer, err = rsa.GenerateKey(rand.Reader, size)
	case EC:
		c, _ := curve(size)
		signer, err = ecdsa.GenerateKey(c, rand.Reader)
	default:
		return nil, newf(ErrValidation, "unsupported key algorithm: %q", algo)
	}
	if err != nil {
		return nil, markf(err, ErrSigning, "failed to generate %s key", algo)
	}

	logger.KV(xlog.DEBUG, "reason", "genkey", "algo", algo, "size", size)

	return &KeyPair{
		Signer: signer,
		Algo:   algo,
		Size:   size,
	}, nil
}

// PersistKey writes the private key to the path in PEM format,
// encrypted with AES-256 under the passphrase.
// The file is created or truncated with 0600 permissions.
func PersistKey(key crypto.Signer, passphrase []byte, path string) error {
	if len(passphrase) == 0 {
		return newf(ErrValidation, "passphrase is required")
	}
	if key == nil {
		return newf(ErrValidation, "key is required")
	}

	pem, err := certutil.EncryptPrivateKeyToPEM(privateKey(key), passphrase)
	if err != nil {
		return mark(err, ErrValidation, "unable to encode key")
	}

	err = os.WriteFile(path, pem, 0600)
	if err != nil {
		return markf(err, ErrIO, "unable to write key")
	}

	logger.KV(xlog.DEBUG, "reason", "persist_key", "path", path)
	return nil
}

// LoadKey reads and decrypts the private key from the path.
// A wrong passphrase results in ErrDecryption.
func LoadKey(path string, passphrase []byte) (*KeyPair, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, markf(err, ErrIO, "unable to read key")
	}
	return ParseKey(pem, passphrase)
}

// ParseKey parses PEM encoded private key, encrypted or not
func ParseKey(pem []byte, passphrase []byte) (*KeyPair, error) {
	signer, err := certutil.ParsePrivateKeyPEMWithPassword(pem, passphrase)
	if err != nil {
		if certutil.IsEncryptedPEM(pem) {
			// a wrong passphrase may pass the padding check,
			// in that case the key fails to parse
			return nil, mark(err, ErrDecryption, "unable to decrypt key")
		}
		return nil, mark(err, ErrValidation, "unable to parse key")
	}
	return NewKeyPair(signer)
}

// privateKey unwraps KeyPair
func privateKey(key crypto.Signer) crypto.Signer {
	if kp, ok := key.(*KeyPair); ok {
		return kp.Signer
	}
	return key
}
