package asset

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file.
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial collections and assets from genesis and save
// them in the database.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	var conf struct {
		Collections []struct {
			ID    string        `json:"id"`
			Owner weave.Address `json:"owner"`
			Name  string        `json:"name"`
		} `json:"collections"`
		Assets []struct {
			ID         string        `json:"id"`
			Owner      weave.Address `json:"owner"`
			Collection string        `json:"collection"`
			Name       string        `json:"name"`
			URI        string        `json:"uri"`
		} `json:"assets"`
	}
	if err := opts.ReadOptions("asset", &conf); err != nil {
		return errors.Wrap(err, "read asset genesis options")
	}

	collections := NewCollectionBucket()
	for i, c := range conf.Collections {
		coll := Collection{
			Metadata: &weave.Metadata{Schema: 1},
			ID:       []byte(c.ID),
			Owner:    c.Owner,
			Name:     c.Name,
		}
		if _, err := collections.Put(db, coll.ID, &coll); err != nil {
			return errors.Wrapf(err, "cannot store collection #%d", i)
		}
	}

	assets := NewBucket()
	for i, a := range conf.Assets {
		asset := Asset{
			Metadata:   &weave.Metadata{Schema: 1},
			ID:         []byte(a.ID),
			Owner:      a.Owner,
			Collection: []byte(a.Collection),
			Name:       a.Name,
			URI:        a.URI,
		}
		if len(asset.Collection) == 0 {
			asset.Collection = nil
		}
		if _, err := assets.Put(db, asset.ID, &asset); err != nil {
			return errors.Wrapf(err, "cannot store asset #%d", i)
		}
	}
	return nil
}
