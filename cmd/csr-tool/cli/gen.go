package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/csr"
	"github.com/effective-security/xlog"
	"gopkg.in/yaml.v3"
)

// GenCmd generates a key and CSR
type GenCmd struct {
	Profile string `help:"optional file name with CSR profile, YAML or JSON"`

	Algo string   `name:"key-algo" help:"key algorithm: RSA or EC, RSA by default"`
	Size int      `name:"key-size" help:"RSA key size, or EC curve size"`
	C    string   `name:"c" help:"subject country"`
	ST   string   `name:"st" help:"subject state or province"`
	L    string   `name:"l" help:"subject locality"`
	O    string   `name:"o" help:"subject organization"`
	OU   string   `name:"ou" help:"subject organizational unit"`
	CN   string   `name:"cn" help:"subject common name"`
	San  []string `help:"DNS names for Subject Alt Names, in order"`

	KeyOut         string `name:"key-out" required:"" help:"file name for the encrypted private key"`
	CsrOut         string `name:"csr-out" required:"" help:"file name for the CSR"`
	Passphrase     string `help:"passphrase to encrypt the private key"`
	PassphraseFile string `help:"file name with passphrase to encrypt the private key"`
}

// Run the command
func (a *GenCmd) Run(ctx *Cli) error {
	req, err := a.request(ctx)
	if err != nil {
		return err
	}

	passphrase, err := ctx.ReadPassphrase(a.Passphrase, a.PassphraseFile)
	if err != nil {
		return err
	}

	key, c, err := csr.CreateRequest(req)
	if err != nil {
		return errors.WithMessage(err, "process CSR")
	}

	// the key is written first, a CSR without its key is useless
	err = csr.PersistKey(key, passphrase, a.KeyOut)
	if err != nil {
		return err
	}
	err = csr.PersistCSR(c, a.CsrOut)
	if err != nil {
		if rerr := os.Remove(a.KeyOut); rerr != nil {
			logger.KV(xlog.WARNING, "reason", "remove", "file", a.KeyOut, "err", rerr.Error())
		}
		return err
	}

	ctx.WriteJSON(c.ExtractAll())
	return nil
}

// request loads the profile and applies the flags
func (a *GenCmd) request(ctx *Cli) (*csr.CertificateRequest, error) {
	profile := &csr.CertificateRequest{}
	if a.Profile != "" {
		b, err := ctx.ReadFile(a.Profile)
		if err != nil {
			return nil, errors.WithMessage(err, "read CSR profile")
		}
		if strings.HasSuffix(a.Profile, ".json") {
			err = json.Unmarshal(b, profile)
		} else {
			err = yaml.Unmarshal(b, profile)
		}
		if err != nil {
			return nil, errors.WithMessage(err, "invalid CSR profile")
		}
	}

	req, err := profile.Clone()
	if err != nil {
		return nil, err
	}

	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&req.Subject.Country, a.C)
	setIf(&req.Subject.Province, a.ST)
	setIf(&req.Subject.Locality, a.L)
	setIf(&req.Subject.Organization, a.O)
	setIf(&req.Subject.OrganizationalUnit, a.OU)
	setIf(&req.Subject.CommonName, a.CN)

	if len(a.San) > 0 {
		req.SAN = a.San
	}
	if a.Algo != "" || a.Size > 0 {
		if req.KeyRequest == nil {
			req.KeyRequest = &csr.KeyRequest{}
		}
		setIf(&req.KeyRequest.Algo, a.Algo)
		if a.Size > 0 {
			req.KeyRequest.Size = a.Size
		}
	}
	return req, nil
}
