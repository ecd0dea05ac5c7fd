package csr

import (
	"strings"

	"golang.org/x/net/idna"
)

const maxLabelLength = 63

// labelProfile maps and encodes a single label with non-ASCII characters.
// Mapping lowercases and normalizes the label before Punycode.
var labelProfile = idna.New(
	idna.MapForLookup(),
	idna.CheckHyphens(false),
	idna.StrictDomainName(false),
	idna.VerifyDNSLength(true),
)

var dotsReplacer = strings.NewReplacer("。", ".", "．", ".", "｡", ".")

// EncodeDomain returns IDNA encoded domain,
// or ErrEncoding if the domain is not a valid IDN.
// ASCII labels are kept as is, case included, and only their length is checked.
// A single trailing dot is allowed.
func EncodeDomain(domain string) (string, error) {
	labels := strings.Split(dotsReplacer.Replace(domain), ".")
	last := len(labels) - 1
	for i, label := range labels {
		if label == "" && i == last && i > 0 {
			continue
		}
		if isASCII(label) {
			if label == "" || len(label) > maxLabelLength {
				return "", newf(ErrEncoding, "unable to encode domain %q: invalid label length: %d", domain, len(label))
			}
			continue
		}
		s, err := labelProfile.ToASCII(label)
		if err != nil {
			return "", markf(err, ErrEncoding, "unable to encode domain %q", domain)
		}
		labels[i] = s
	}
	return strings.Join(labels, "."), nil
}

// EncodeDomains returns IDNA encoded domains, in the same order
func EncodeDomains(domains []string) ([]string, error) {
	list := make([]string, 0, len(domains))
	for _, d := range domains {
		s, err := EncodeDomain(d)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
