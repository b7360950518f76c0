package asset

import (
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Collection{}, migration.NoModification)
	migration.MustRegister(1, &Asset{}, migration.NoModification)
}

var _ orm.CloneableData = (*Collection)(nil)
var _ orm.CloneableData = (*Asset)(nil)

// Validate ensures the collection is valid.
func (c *Collection) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateID(c.ID); err != nil {
		return errors.Wrap(err, "id")
	}
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := validateName(c.Name); err != nil {
		return errors.Wrap(err, "name")
	}
	return nil
}

// Copy makes a new collection with the same content.
func (c *Collection) Copy() orm.CloneableData {
	return &Collection{
		Metadata: c.Metadata.Copy(),
		ID:       c.ID,
		Owner:    c.Owner,
		Name:     c.Name,
	}
}

// Validate ensures the asset is valid.
func (a *Asset) Validate() error {
	if err := a.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateID(a.ID); err != nil {
		return errors.Wrap(err, "id")
	}
	if err := a.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if len(a.Collection) != 0 {
		if err := validateID(a.Collection); err != nil {
			return errors.Wrap(err, "collection")
		}
	}
	if err := validateName(a.Name); err != nil {
		return errors.Wrap(err, "name")
	}
	if len(a.URI) > maxURISize {
		return errors.Wrapf(errors.ErrInput, "uri longer than %d characters", maxURISize)
	}
	return nil
}

// Copy makes a new asset with the same content.
func (a *Asset) Copy() orm.CloneableData {
	return &Asset{
		Metadata:   a.Metadata.Copy(),
		ID:         a.ID,
		Owner:      a.Owner,
		Collection: a.Collection,
		Name:       a.Name,
		URI:        a.URI,
	}
}

// NewCollectionBucket returns a bucket for keeping collections, keyed by
// their ID.
func NewCollectionBucket() orm.ModelBucket {
	b := orm.NewModelBucket("coll", &Collection{})
	return migration.NewModelBucket("asset", b)
}

// NewBucket returns a bucket for keeping assets, keyed by their ID.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("asset", &Asset{},
		orm.WithIndex("owner", idxOwner, false),
	)
	return migration.NewModelBucket("asset", b)
}

func toAsset(obj orm.Object) (*Asset, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "Cannot take index of nil")
	}
	a, ok := obj.Value().(*Asset)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "Can only take index of Asset")
	}
	return a, nil
}

func idxOwner(obj orm.Object) ([]byte, error) {
	a, err := toAsset(obj)
	if err != nil {
		return nil, err
	}
	return a.Owner, nil
}
