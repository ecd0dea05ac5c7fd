package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"net"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// GeneralName tags, RFC 5280 4.2.1.6
var (
	tagOtherName     = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagRFC822Name    = cbasn1.Tag(1).ContextSpecific()
	tagDNSName       = cbasn1.Tag(2).ContextSpecific()
	tagDirectoryName = cbasn1.Tag(4).ContextSpecific().Constructed()
	tagURI           = cbasn1.Tag(6).ContextSpecific()
	tagIPAddress     = cbasn1.Tag(7).ContextSpecific()
	tagRegisteredID  = cbasn1.Tag(8).ContextSpecific()
	tagOtherValue    = cbasn1.Tag(0).ContextSpecific().Constructed()
)

// parseGeneralNames decodes the SubjectAltName extension value
// keeping the order of entries, which x509 does not preserve across types.
func parseGeneralNames(der []byte) ([]NameEntry, error) {
	var seq cryptobyte.String
	input := cryptobyte.String(der)
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("invalid Subject Alt Name extension")
	}

	list := []NameEntry{}
	for !seq.Empty() {
		var (
			element cryptobyte.String
			value   cryptobyte.String
			tag     cbasn1.Tag
		)
		if !seq.ReadAnyASN1Element(&element, &tag) {
			return nil, errors.New("invalid GeneralName")
		}
		content := element
		if !content.ReadAnyASN1(&value, &tag) {
			return nil, errors.New("invalid GeneralName")
		}

		entry, err := parseGeneralName(tag, element, value)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			logger.KV(xlog.WARNING, "reason", "unsupported_general_name", "tag", int(tag))
			continue
		}
		list = append(list, *entry)
	}
	return list, nil
}

func parseGeneralName(tag cbasn1.Tag, element, value cryptobyte.String) (*NameEntry, error) {
	switch tag {
	case tagDNSName:
		return &NameEntry{NameType: NameTypeDNS, Value: string(value)}, nil
	case tagRFC822Name:
		return &NameEntry{NameType: NameTypeEmail, Value: string(value)}, nil
	case tagURI:
		return &NameEntry{NameType: NameTypeURI, Value: string(value)}, nil
	case tagIPAddress:
		if len(value) != net.IPv4len && len(value) != net.IPv6len {
			return nil, errors.Errorf("invalid IP address length: %d", len(value))
		}
		return &NameEntry{NameType: NameTypeIP, Value: net.IP(value).String()}, nil
	case tagRegisteredID:
		// re-tag the implicit value as OBJECT IDENTIFIER
		der := append([]byte{}, element...)
		der[0] = byte(cbasn1.OBJECT_IDENTIFIER)
		var id asn1.ObjectIdentifier
		if _, err := asn1.Unmarshal(der, &id); err != nil {
			return nil, errors.WithMessage(err, "invalid registeredID")
		}
		return &NameEntry{NameType: NameTypeRegisteredID, Value: id.String()}, nil
	case tagDirectoryName:
		var rdn pkix.RDNSequence
		if rest, err := asn1.Unmarshal(value, &rdn); err != nil || len(rest) > 0 {
			return nil, errors.New("invalid directoryName")
		}
		var name pkix.Name
		name.FillFromRDNSequence(&rdn)
		return &NameEntry{NameType: NameTypeDirectoryName, Value: name.String()}, nil
	case tagOtherName:
		return parseOtherName(value)
	}
	return nil, nil
}

// parseOtherName returns "<type-id>:<value>", the value is decoded
// for string types, and hex encoded otherwise.
func parseOtherName(value cryptobyte.String) (*NameEntry, error) {
	var (
		typeID asn1.ObjectIdentifier
		inner  cryptobyte.String
	)
	if !value.ReadASN1ObjectIdentifier(&typeID) ||
		!value.ReadASN1(&inner, tagOtherValue) {
		return nil, errors.New("invalid otherName")
	}

	var (
		s   cryptobyte.String
		tag cbasn1.Tag
	)
	v := hex.EncodeToString(inner)
	elem := inner
	if elem.ReadAnyASN1(&s, &tag) && elem.Empty() {
		switch tag {
		case cbasn1.UTF8String, cbasn1.IA5String, cbasn1.PrintableString:
			v = string(s)
		}
	}
	return &NameEntry{NameType: NameTypeOtherName, Value: typeID.String() + ":" + v}, nil
}
