package oid

import (
	"encoding/asn1"
)

// well-known OIDs
var (
	ExtensionSubjectKeyID   = asn1.ObjectIdentifier{2, 5, 29, 14}
	ExtensionKeyUsage       = asn1.ObjectIdentifier{2, 5, 29, 15}
	ExtensionSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}

	NameCN = asn1.ObjectIdentifier{2, 5, 4, 3}
	NameC  = asn1.ObjectIdentifier{2, 5, 4, 6}
	NameL  = asn1.ObjectIdentifier{2, 5, 4, 7}
	NameST = asn1.ObjectIdentifier{2, 5, 4, 8}
	NameO  = asn1.ObjectIdentifier{2, 5, 4, 10}
	NameOU = asn1.ObjectIdentifier{2, 5, 4, 11}
)

// DisplayName provides OID name
var DisplayName = map[string]string{
	ExtensionSubjectKeyID.String():   "Subject KeyID",
	ExtensionKeyUsage.String():       "Key Usage",
	ExtensionSubjectAltName.String(): "Subject Alt Name",
	NameCN.String():                  "CN",
	NameC.String():                   "C",
	NameL.String():                   "L",
	NameST.String():                  "ST",
	NameO.String():                   "O",
	NameOU.String():                  "OU",
}

// Name returns display name of the OID, or its dotted string
func Name(id asn1.ObjectIdentifier) string {
	s := id.String()
	if n, ok := DisplayName[s]; ok {
		return n
	}
	return s
}
