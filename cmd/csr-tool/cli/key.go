package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/csrkit/certutil"
	"github.com/effective-security/csrkit/csr"
)

// KeyInfoCmd prints information about an encrypted private key
type KeyInfoCmd struct {
	Key            string `kong:"arg" required:"" help:"private key file name"`
	Passphrase     string `help:"passphrase to decrypt the private key"`
	PassphraseFile string `help:"file name with passphrase to decrypt the private key"`
}

// KeyInfo is printed by key-info command
type KeyInfo struct {
	Algo      string `json:"algo" yaml:"algo"`
	Size      int    `json:"size" yaml:"size"`
	PublicKey string `json:"public_key" yaml:"public_key"`
}

// Run the command
func (a *KeyInfoCmd) Run(ctx *Cli) error {
	passphrase, err := ctx.ReadPassphrase(a.Passphrase, a.PassphraseFile)
	if err != nil {
		return err
	}

	key, err := csr.LoadKey(a.Key, passphrase)
	if err != nil {
		return err
	}

	pub, err := certutil.EncodePublicKeyToPEM(key.Public())
	if err != nil {
		return errors.WithMessage(err, "unable to encode public key")
	}

	ctx.WriteJSON(&KeyInfo{
		Algo:      string(key.Algo),
		Size:      key.Size,
		PublicKey: string(pub),
	})
	return nil
}
