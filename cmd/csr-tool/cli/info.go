package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/certutil"
	"github.com/effective-security/csrkit/csr"
	"github.com/effective-security/csrkit/oid"
)

// InfoCmd prints the names of CSR
type InfoCmd struct {
	Csr    string `kong:"arg" required:"" help:"CSR file name, or - for stdin"`
	Verify bool   `help:"verify the CSR signature before extracting names"`
	Format string `help:"output format" enum:"json,yaml" default:"json"`
}

// Run the command
func (a *InfoCmd) Run(ctx *Cli) error {
	c, err := loadCSR(ctx, a.Csr)
	if err != nil {
		return err
	}
	if a.Verify {
		if err = c.Verify(); err != nil {
			return err
		}
	}
	ctx.WriteObject(a.Format, c.ExtractAll())
	return nil
}

// VerifyCmd verifies the CSR signature
type VerifyCmd struct {
	Csr string `kong:"arg" required:"" help:"CSR file name, or - for stdin"`
}

// Run the command
func (a *VerifyCmd) Run(ctx *Cli) error {
	c, err := loadCSR(ctx, a.Csr)
	if err != nil {
		return err
	}
	if err = c.Verify(); err != nil {
		return err
	}
	ki, err := certutil.NewKeyInfo(c.PublicKey())
	if err != nil {
		return err
	}

	w := ctx.Writer()
	fmt.Fprintf(w, "OK: %s\n", c.Subject().String())
	fmt.Fprintf(w, "Key: %s %d\n", ki.Type, ki.KeySize)
	fmt.Fprintf(w, "Signature: %s\n", c.Request().SignatureAlgorithm.String())
	if len(c.Request().Extensions) > 0 {
		names := make([]string, 0, len(c.Request().Extensions))
		for _, ext := range c.Request().Extensions {
			names = append(names, oid.Name(ext.Id))
		}
		fmt.Fprintf(w, "Extensions: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func loadCSR(ctx *Cli, file string) (*csr.CSR, error) {
	b, err := ctx.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to load CSR file")
	}
	return csr.ParsePEM(b)
}
