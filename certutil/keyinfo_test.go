package certutil_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/effective-security/csrkit/certutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyInfoRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ki, err := certutil.NewKeyInfo(key)
	require.NoError(t, err)
	assert.Equal(t, "RSA", ki.Type)
	assert.Equal(t, 2048, ki.KeySize)
	assert.Equal(t, x509.SHA256WithRSA, ki.SHA256SignatureAlgorithm())

	ki, err = certutil.NewKeyInfo(key.Public())
	require.NoError(t, err)
	assert.Equal(t, "RSA", ki.Type)
	assert.Equal(t, 2048, ki.KeySize)
}

func TestKeyInfoECDSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	ki, err := certutil.NewKeyInfo(key)
	require.NoError(t, err)
	assert.Equal(t, "ECDSA", ki.Type)
	assert.Equal(t, 384, ki.KeySize)
	assert.Equal(t, x509.ECDSAWithSHA256, ki.SHA256SignatureAlgorithm())

	ki, err = certutil.NewKeyInfo(key.Public())
	require.NoError(t, err)
	assert.Equal(t, "ECDSA", ki.Type)
	assert.Equal(t, 384, ki.KeySize)
}

func TestKeyInfoUnsupported(t *testing.T) {
	_, pvk, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, err = certutil.NewKeyInfo(pvk)
	require.Error(t, err)
	assert.Equal(t, "key not supported: ed25519.PublicKey", err.Error())
}
