package csr

import (
	"github.com/cockroachdb/errors"
)

// NameType is the kind of an extracted name
type NameType int

// Name types. SAN variants follow the GeneralName choices of RFC 5280.
const (
	NameTypeUnknown NameType = iota
	NameTypeCommonName
	NameTypeDNS
	NameTypeIP
	NameTypeEmail
	NameTypeURI
	NameTypeDirectoryName
	NameTypeRegisteredID
	NameTypeOtherName
)

var nameTypeNames = map[NameType]string{
	NameTypeUnknown:       "unknown",
	NameTypeCommonName:    "common_name",
	NameTypeDNS:           "DNSName",
	NameTypeIP:            "IPAddress",
	NameTypeEmail:         "RFC822Name",
	NameTypeURI:           "UniformResourceIdentifier",
	NameTypeDirectoryName: "DirectoryName",
	NameTypeRegisteredID:  "RegisteredID",
	NameTypeOtherName:     "OtherName",
}

// String returns the tag used in extracted records
func (t NameType) String() string {
	if s, ok := nameTypeNames[t]; ok {
		return s
	}
	return nameTypeNames[NameTypeUnknown]
}

// ParseNameType returns NameType by its tag
func ParseNameType(s string) (NameType, error) {
	for t, n := range nameTypeNames {
		if n == s && t != NameTypeUnknown {
			return t, nil
		}
	}
	return NameTypeUnknown, errors.Errorf("unsupported name type: %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t NameType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *NameType) UnmarshalText(text []byte) error {
	v, err := ParseNameType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// NameEntry is an extracted name: the Common Name of the subject,
// or one Subject Alternative Name.
type NameEntry struct {
	NameType NameType `json:"nameType" yaml:"nameType"`
	Value    string   `json:"value" yaml:"value"`
}

// ExtractedCertData is the list of names extracted from a CSR:
// Common Name first, when present, then SANs in the stored order.
type ExtractedCertData []NameEntry

// Values returns the values of entries with the type
func (d ExtractedCertData) Values(t NameType) []string {
	var list []string
	for _, e := range d {
		if e.NameType == t {
			list = append(list, e.Value)
		}
	}
	return list
}
