package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner address")
	}
	if err := c.Vault.Validate(); err != nil {
		return errors.Wrap(err, "vault address")
	}
	if err := c.Fee.Validate(); err != nil {
		return errors.Wrap(err, "fee")
	}
	if !c.Fee.IsNonNegative() {
		return errors.Wrap(errors.ErrState, "fee cannot be negative")
	}
	return nil
}

// VaultCondition is the condition controlling the custodial holding
// account. It is owned by no signer and derived from a constant so that
// the vault address is the same on every chain.
func VaultCondition() weave.Condition {
	return weave.NewCondition("vault", "custody", []byte("global"))
}

// VaultAddress returns the address of the custodial holding account.
func VaultAddress() weave.Address {
	return VaultCondition().Address()
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "vault", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
