package csr_test

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/csr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDistinguishedNameValidate(t *testing.T) {
	tcases := []struct {
		n   csr.DistinguishedName
		err string
	}{
		{n: csr.DistinguishedName{CommonName: "ekspand.com"}},
		{n: csr.DistinguishedName{Organization: "ekspand"}},
		{n: csr.DistinguishedName{}, err: "empty name"},
		{n: csr.DistinguishedName{CommonName: "  "}, err: "empty name"},
		{n: csr.DistinguishedName{Country: "  ", OrganizationalUnit: "\t"}, err: "empty name"},
		{n: csr.DistinguishedName{Country: "USA", CommonName: "x"}, err: `country must be a 2 characters code: "USA"`},
	}

	for _, tc := range tcases {
		err := tc.n.Validate()
		if tc.err != "" {
			require.Error(t, err)
			assert.Equal(t, tc.err, err.Error())
			assert.True(t, errors.Is(err, csr.ErrValidation))
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestDistinguishedNameName(t *testing.T) {
	n := testDN.Name()
	assert.Equal(t, "CN=serverabc.domain.com,OU=IT,O=Mycompany,L=WI,ST=Madison,C=US", n.String())
	assert.Equal(t, []string{"US"}, n.Country)
	assert.Len(t, n.Names, 6)

	partial := csr.DistinguishedName{Organization: "ekspand", CommonName: "ekspand.com"}
	assert.Equal(t, "CN=ekspand.com,O=ekspand", partial.Name().String())
	assert.Len(t, partial.RDNSequence(), 2)

	blank := csr.DistinguishedName{Country: " ", Province: "\t", OrganizationalUnit: "  ", CommonName: "ekspand.com"}
	require.NoError(t, blank.Validate())
	assert.Len(t, blank.RDNSequence(), 1)
	assert.Equal(t, "CN=ekspand.com", blank.Name().String())
}

func TestCertificateRequestProfile(t *testing.T) {
	profile := `
subject:
  c: US
  st: Madison
  l: WI
  o: Mycompany
  ou: IT
  cn: serverabc.domain.com
san:
  - server1.mydomain.com
  - server3
key:
  algo: EC
  size: 384
`
	var req csr.CertificateRequest
	require.NoError(t, yaml.Unmarshal([]byte(profile), &req))
	assert.Equal(t, testDN, req.Subject)
	assert.Equal(t, []string{"server1.mydomain.com", "server3"}, req.SAN)
	require.NotNil(t, req.KeyRequest)
	assert.Equal(t, 384, req.KeyRequest.KeySize())
	assert.NoError(t, req.Validate())

	clone, err := req.Clone()
	require.NoError(t, err)
	assert.Equal(t, req, *clone)

	clone.AddSAN("server4")
	clone.KeyRequest.Size = 256
	assert.Len(t, req.SAN, 2)
	assert.Equal(t, 384, req.KeyRequest.Size)

	js, err := json.Marshal(req)
	require.NoError(t, err)
	var req2 csr.CertificateRequest
	require.NoError(t, json.Unmarshal(js, &req2))
	assert.Equal(t, req, req2)

	req.KeyRequest.Size = 1
	assert.Error(t, req.Validate())
}

func TestNameType(t *testing.T) {
	for _, nt := range []csr.NameType{
		csr.NameTypeCommonName,
		csr.NameTypeDNS,
		csr.NameTypeIP,
		csr.NameTypeEmail,
		csr.NameTypeURI,
		csr.NameTypeDirectoryName,
		csr.NameTypeRegisteredID,
		csr.NameTypeOtherName,
	} {
		parsed, err := csr.ParseNameType(nt.String())
		require.NoError(t, err)
		assert.Equal(t, nt, parsed)
	}

	assert.Equal(t, "unknown", csr.NameType(100).String())
	_, err := csr.ParseNameType("unknown")
	assert.Error(t, err)

	data := csr.ExtractedCertData{
		{NameType: csr.NameTypeCommonName, Value: "serverabc.domain.com"},
		{NameType: csr.NameTypeDNS, Value: "server3"},
	}
	js, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Equal(t, `[{"nameType":"common_name","value":"serverabc.domain.com"},{"nameType":"DNSName","value":"server3"}]`, string(js))

	var decoded csr.ExtractedCertData
	require.NoError(t, json.Unmarshal(js, &decoded))
	assert.Equal(t, data, decoded)

	y, err := yaml.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(y), "nameType: DNSName")
}
