package csr

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"os"
	"time"

	"github.com/effective-security/csrkit/certutil"
	"github.com/effective-security/csrkit/metricskey"
	"github.com/effective-security/csrkit/oid"
	"github.com/effective-security/xlog"
)

// CSR is a signed certificate request.
// It is immutable once built or parsed.
type CSR struct {
	raw     []byte
	request *x509.CertificateRequest
	sans    []NameEntry
}

// BuildCSR returns a CSR for the subject and the DNS names, signed by the key with SHA-256.
// Each domain is IDNA encoded and added as DNS SAN in the given order;
// the SAN extension is not critical, and omitted when domains is empty.
func BuildCSR(key crypto.Signer, dn DistinguishedName, domains []string) (*CSR, error) {
	if key == nil {
		return nil, newf(ErrSigning, "key is required")
	}
	if err := dn.Validate(); err != nil {
		return nil, err
	}

	names, err := EncodeDomains(domains)
	if err != nil {
		return nil, err
	}

	subject, err := asn1.Marshal(dn.RDNSequence())
	if err != nil {
		return nil, mark(err, ErrEncoding, "unable to encode subject")
	}

	ki, err := certutil.NewKeyInfo(key.Public())
	if err != nil {
		return nil, mark(err, ErrSigning, "unsupported key")
	}

	template := &x509.CertificateRequest{
		RawSubject:         subject,
		DNSNames:           names,
		SignatureAlgorithm: ki.SHA256SignatureAlgorithm(),
	}

	logger.KV(xlog.DEBUG,
		"reason", "build_csr",
		"cn", dn.CommonName,
		"san", names,
		"algo", ki.Type,
	)

	der, err := sign(template, privateKey(key), string(keyAlgorithm(ki)))
	if err != nil {
		return nil, err
	}

	return newCSR(der)
}

func sign(template *x509.CertificateRequest, key crypto.Signer, algo string) ([]byte, error) {
	defer metricskey.PerfCSROperation.MeasureSince(time.Now(), algo, "sign")

	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return nil, mark(err, ErrSigning, "unable to sign CSR")
	}
	return der, nil
}

// CreateRequest generates a key as specified by the request, RSA 2048 by default,
// and returns the key with the CSR.
func CreateRequest(req *CertificateRequest) (*KeyPair, *CSR, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	kr := req.KeyRequest
	if kr == nil {
		kr = NewKeyRequest(RSA, DefaultRSAKeySize)
	}

	key, err := kr.Generate()
	if err != nil {
		return nil, nil, err
	}

	c, err := BuildCSR(key, req.Subject, req.SAN)
	if err != nil {
		return nil, nil, err
	}
	return key, c, nil
}

// ParsePEM returns CSR parsed from PEM,
// CERTIFICATE REQUEST and NEW CERTIFICATE REQUEST blocks are accepted.
// The signature is not verified, see Verify.
func ParsePEM(pemText []byte) (*CSR, error) {
	start := time.Now()
	csrv, err := certutil.ParseCSRFromPEM(pemText)
	if err != nil {
		metricskey.PerfCSROperation.MeasureSince(start, "unknown", "parse")
		return nil, mark(err, ErrValidation, invalidCSRMessage)
	}
	defer metricskey.PerfCSROperation.MeasureSince(start, metricAlgo(csrv.PublicKey), "parse")
	return fromRequest(csrv)
}

// ParseDER returns CSR parsed from DER
func ParseDER(der []byte) (*CSR, error) {
	return newCSR(der)
}

// ExtractFromPEM parses the PEM encoded CSR and returns its names
func ExtractFromPEM(pemText []byte) (ExtractedCertData, error) {
	c, err := ParsePEM(pemText)
	if err != nil {
		return nil, err
	}
	return c.ExtractAll(), nil
}

// LoadCSR reads PEM encoded CSR from the path
func LoadCSR(path string) (*CSR, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, markf(err, ErrIO, "unable to read CSR")
	}
	return ParsePEM(b)
}

// PersistCSR writes the CSR to the path in PEM format.
// The file is created or truncated.
func PersistCSR(c *CSR, path string) error {
	if c == nil {
		return newf(ErrValidation, "CSR is required")
	}
	err := os.WriteFile(path, c.PEM(), 0664)
	if err != nil {
		return markf(err, ErrIO, "unable to write CSR")
	}
	logger.KV(xlog.DEBUG, "reason", "persist_csr", "path", path)
	return nil
}

func newCSR(der []byte) (*CSR, error) {
	csrv, err := x509.ParseCertificateRequest(der)
	if err != nil {
		return nil, mark(err, ErrValidation, invalidCSRMessage)
	}
	return fromRequest(csrv)
}

func fromRequest(csrv *x509.CertificateRequest) (*CSR, error) {
	c := &CSR{
		raw:     csrv.Raw,
		request: csrv,
	}

	if v := certutil.FindExtensionValue(csrv.Extensions, oid.ExtensionSubjectAltName); v != nil {
		sans, err := parseGeneralNames(v)
		if err != nil {
			return nil, mark(err, ErrValidation, invalidCSRMessage)
		}
		c.sans = sans
	}
	return c, nil
}

// DER returns the ASN.1 DER content of the CSR
func (c *CSR) DER() []byte {
	return c.raw
}

// PEM returns PEM encoded CSR
func (c *CSR) PEM() []byte {
	return certutil.EncodeCSRToPEM(c.raw)
}

// Request returns the parsed request
func (c *CSR) Request() *x509.CertificateRequest {
	return c.request
}

// Subject returns the subject name
func (c *CSR) Subject() pkix.Name {
	return c.request.Subject
}

// PublicKey returns the public key of the request
func (c *CSR) PublicKey() crypto.PublicKey {
	return c.request.PublicKey
}

// SANExtension returns Subject Alt Name extension, or nil
func (c *CSR) SANExtension() *pkix.Extension {
	return certutil.FindExtension(c.request.Extensions, oid.ExtensionSubjectAltName)
}

// CommonName returns the first Common Name attribute of the subject.
// The second value is false if the subject has no Common Name.
func (c *CSR) CommonName() (string, bool) {
	at := certutil.FindAttr(c.request.Subject.Names, oid.NameCN)
	if at == nil {
		return "", false
	}
	if s, ok := at.Value.(string); ok {
		return s, true
	}
	return fmt.Sprint(at.Value), true
}

// SANs returns Subject Alt Names in the order of the extension,
// or empty list if the extension is not present.
func (c *CSR) SANs() []NameEntry {
	list := make([]NameEntry, len(c.sans))
	copy(list, c.sans)
	return list
}

// ExtractAll returns the Common Name, if present, followed by SANs
func (c *CSR) ExtractAll() ExtractedCertData {
	data := make(ExtractedCertData, 0, len(c.sans)+1)
	if cn, ok := c.CommonName(); ok {
		data = append(data, NameEntry{NameType: NameTypeCommonName, Value: cn})
	}
	return append(data, c.sans...)
}

// Verify checks the self-signature of the request
func (c *CSR) Verify() error {
	defer metricskey.PerfCSROperation.MeasureSince(time.Now(), metricAlgo(c.request.PublicKey), "verify")

	if err := c.request.CheckSignature(); err != nil {
		return mark(err, ErrValidation, "CSR signature is not valid")
	}
	return nil
}
