package csr_test

import (
	"testing"
	"time"

	"github.com/effective-security/csrkit/csr"
	"github.com/effective-security/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAlgoTags(t *testing.T) {
	sink := metrics.NewInmemSink(time.Minute, time.Minute)
	_, err := metrics.NewGlobal(&metrics.Config{FilterDefault: true}, sink)
	require.NoError(t, err)
	defer func() {
		_, _ = metrics.NewGlobal(&metrics.Config{FilterDefault: true}, &metrics.BlackholeSink{})
	}()

	for _, algo := range []csr.KeyAlgorithm{csr.RSA, csr.EC} {
		key, err := csr.GenerateKey(algo, 0)
		require.NoError(t, err)
		c, err := csr.BuildCSR(key, testDN, testDomains)
		require.NoError(t, err)
		parsed, err := csr.ParsePEM(c.PEM())
		require.NoError(t, err)
		require.NoError(t, parsed.Verify())
	}
	_, err = csr.ParsePEM([]byte("not a CSR"))
	require.Error(t, err)

	keys := map[string]bool{}
	for _, intv := range sink.Data() {
		intv.RLock()
		for k := range intv.Samples {
			keys[k] = true
		}
		intv.RUnlock()
	}

	for _, algo := range []string{"RSA", "EC"} {
		for _, action := range []string{"genkey", "sign", "parse", "verify"} {
			k := "perf_csr;algo=" + algo + ";action=" + action
			assert.True(t, keys[k], k)
		}
	}
	assert.True(t, keys["perf_csr;algo=unknown;action=parse"])
	assert.False(t, keys["perf_csr;algo=ECDSA;action=sign"])
}
