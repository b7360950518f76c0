package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file.
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse the initial configuration from genesis and save it
// in the database. The configuration is optional in genesis. When not
// provided, it can be created later with an initialization message.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	switch err := gconf.InitConfig(db, opts, "vault", &Configuration{}); {
	case err == nil:
		// All good.
	case errors.ErrNotFound.Is(err):
		// No configuration in genesis.
	default:
		return errors.Wrap(err, "init config")
	}
	return nil
}
