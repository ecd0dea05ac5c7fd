package csr_test

import (
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/certutil"
	"github.com/effective-security/csrkit/csr"
	"github.com/effective-security/x/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	tcases := []struct {
		algo   csr.KeyAlgorithm
		size   int
		expAlg csr.KeyAlgorithm
		expLen int
		experr string
	}{
		{algo: csr.RSA, size: 0, expAlg: csr.RSA, expLen: 2048},
		{algo: csr.EC, size: 0, expAlg: csr.EC, expLen: 384},
		{algo: csr.EC, size: 256, expAlg: csr.EC, expLen: 256},
		{algo: "ecdsa", size: 521, expAlg: csr.EC, expLen: 521},
		{algo: csr.RSA, size: 1024, experr: "invalid RSA key size: 1024"},
		{algo: csr.EC, size: 224, experr: "invalid EC curve size: 224"},
		{algo: "DSA", size: 0, experr: `unsupported key algorithm: "DSA"`},
	}

	for _, tc := range tcases {
		t.Run(string(tc.algo), func(t *testing.T) {
			kp, err := csr.GenerateKey(tc.algo, tc.size)
			if tc.experr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.experr, err.Error())
				assert.True(t, errors.Is(err, csr.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expAlg, kp.Algo)
			assert.Equal(t, tc.expLen, kp.Size)

			ki, err := certutil.NewKeyInfo(kp.Signer)
			require.NoError(t, err)
			assert.Equal(t, tc.expLen, ki.KeySize)
		})
	}
}

func TestKeyRequest(t *testing.T) {
	kr := &csr.KeyRequest{}
	algo, err := kr.Algorithm()
	require.NoError(t, err)
	assert.Equal(t, csr.RSA, algo)
	assert.Equal(t, 2048, kr.KeySize())
	assert.NoError(t, kr.Validate())

	kr = &csr.KeyRequest{Algo: "ec"}
	assert.Equal(t, 384, kr.KeySize())
	assert.NoError(t, kr.Validate())

	kr = csr.NewKeyRequest(csr.RSA, 4096)
	assert.Equal(t, 4096, kr.KeySize())
	assert.NoError(t, kr.Validate())
}

func TestPersistKey_RoundTrip(t *testing.T) {
	dir := tempDir(t)
	digest := sha256.Sum256([]byte("csrkit"))

	for _, algo := range []csr.KeyAlgorithm{csr.RSA, csr.EC} {
		t.Run(string(algo), func(t *testing.T) {
			kp, err := csr.GenerateKey(algo, 0)
			require.NoError(t, err)

			path := filepath.Join(dir, string(algo)+".key")
			require.NoError(t, csr.PersistKey(kp, []byte("password"), path))
			require.NoError(t, fileutil.FileExists(path))

			fi, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, certutil.IsEncryptedPEM(b))

			loaded, err := csr.LoadKey(path, []byte("password"))
			require.NoError(t, err)
			assert.Equal(t, kp.Algo, loaded.Algo)
			assert.Equal(t, kp.Size, loaded.Size)

			type privateKey interface {
				Equal(crypto.PrivateKey) bool
			}
			assert.True(t, kp.Signer.(privateKey).Equal(loaded.Signer))

			if algo == csr.RSA {
				// PKCS #1 v1.5 signatures are deterministic
				sig1, err := kp.Sign(rand.Reader, digest[:], crypto.SHA256)
				require.NoError(t, err)
				sig2, err := loaded.Sign(rand.Reader, digest[:], crypto.SHA256)
				require.NoError(t, err)
				assert.Equal(t, sig1, sig2)
			}

			// a CSR signed by the loaded key verifies
			c, err := csr.BuildCSR(loaded, testDN, testDomains)
			require.NoError(t, err)
			assert.NoError(t, c.Verify())

			_, err = csr.LoadKey(path, []byte("wrong"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, csr.ErrDecryption))

			_, err = csr.LoadKey(path, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, csr.ErrDecryption))
		})
	}
}

func TestPersistKey_Errors(t *testing.T) {
	kp, err := csr.GenerateKey(csr.EC, 256)
	require.NoError(t, err)
	dir := tempDir(t)

	err = csr.PersistKey(kp, nil, filepath.Join(dir, "k.key"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrValidation))
	assert.Equal(t, "passphrase is required", err.Error())

	err = csr.PersistKey(kp, []byte("password"), filepath.Join(dir, "missing", "k.key"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrIO))

	err = csr.PersistCSR(nil, filepath.Join(dir, "r.csr"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrValidation))

	c, err := csr.BuildCSR(kp, testDN, nil)
	require.NoError(t, err)
	err = csr.PersistCSR(c, filepath.Join(dir, "missing", "r.csr"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrIO))

	_, err = csr.LoadKey(filepath.Join(dir, "missing.key"), []byte("password"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrIO))

	_, err = csr.LoadCSR(filepath.Join(dir, "missing.csr"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrIO))
}

func TestParseKey_Plain(t *testing.T) {
	kp, err := csr.GenerateKey(csr.EC, 256)
	require.NoError(t, err)

	pem, err := certutil.EncodePrivateKeyToPEM(kp.Signer)
	require.NoError(t, err)

	loaded, err := csr.ParseKey(pem, nil)
	require.NoError(t, err)
	assert.Equal(t, csr.EC, loaded.Algo)

	_, err = csr.ParseKey([]byte("not a key"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrValidation))
}
