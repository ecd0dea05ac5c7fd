package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/oid"
	"github.com/effective-security/x/slices"
	"github.com/jinzhu/copier"
)

// DistinguishedName contains the subject attributes of a request.
type DistinguishedName struct {
	Country            string `json:"c,omitempty" yaml:"c,omitempty"`
	Province           string `json:"st,omitempty" yaml:"st,omitempty"`
	Locality           string `json:"l,omitempty" yaml:"l,omitempty"`
	Organization       string `json:"o,omitempty" yaml:"o,omitempty"`
	OrganizationalUnit string `json:"ou,omitempty" yaml:"ou,omitempty"`
	CommonName         string `json:"cn,omitempty" yaml:"cn,omitempty"`
}

// Validate returns ErrValidation if the name has no identifying information,
// or the country is not a two letter code.
func (n *DistinguishedName) Validate() error {
	if isNameEmpty(n) {
		return newf(ErrValidation, "empty name")
	}
	if !isBlank(n.Country) && len(n.Country) != 2 {
		return newf(ErrValidation, "country must be a 2 characters code: %q", n.Country)
	}
	return nil
}

// isNameEmpty returns true if the name has no identifying information in it.
func isNameEmpty(n *DistinguishedName) bool {
	return isBlank(n.Country) && isBlank(n.Province) && isBlank(n.Locality) &&
		isBlank(n.Organization) && isBlank(n.OrganizationalUnit) && isBlank(n.CommonName)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RDNSequence returns the subject attributes in C, ST, L, O, OU, CN order.
// Empty or whitespace only attributes are omitted.
func (n *DistinguishedName) RDNSequence() pkix.RDNSequence {
	var seq pkix.RDNSequence
	appendIf := func(id asn1.ObjectIdentifier, s string) {
		if !isBlank(s) {
			seq = append(seq, pkix.RelativeDistinguishedNameSET{
				{Type: id, Value: s},
			})
		}
	}

	appendIf(oid.NameC, n.Country)
	appendIf(oid.NameST, n.Province)
	appendIf(oid.NameL, n.Locality)
	appendIf(oid.NameO, n.Organization)
	appendIf(oid.NameOU, n.OrganizationalUnit)
	appendIf(oid.NameCN, n.CommonName)
	return seq
}

// Name returns the PKIX name for the subject.
func (n *DistinguishedName) Name() pkix.Name {
	var name pkix.Name
	seq := n.RDNSequence()
	name.FillFromRDNSequence(&seq)
	return name
}

// A CertificateRequest describes a key and CSR to generate,
// typically loaded from a YAML or JSON profile.
type CertificateRequest struct {
	// Subject of the request
	Subject DistinguishedName `json:"subject" yaml:"subject"`
	// SAN is the list of DNS names
	SAN []string `json:"san,omitempty" yaml:"san,omitempty"`
	// KeyRequest for generated key
	KeyRequest *KeyRequest `json:"key,omitempty" yaml:"key,omitempty"`
}

// Validate the request
func (r *CertificateRequest) Validate() error {
	if err := r.Subject.Validate(); err != nil {
		return err
	}
	if r.KeyRequest != nil {
		if err := r.KeyRequest.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AddSAN adds a SAN value to the request
func (r *CertificateRequest) AddSAN(s string) {
	if found := slices.ContainsString(r.SAN, s); !found {
		r.SAN = append(r.SAN, s)
	}
}

// Clone returns a deep copy of the request
func (r *CertificateRequest) Clone() (*CertificateRequest, error) {
	c := new(CertificateRequest)
	err := copier.CopyWithOption(c, r, copier.Option{DeepCopy: true})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to copy request")
	}
	return c, nil
}
