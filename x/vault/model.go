package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &AssetLocker{}, migration.NoModification)
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

var _ orm.CloneableData = (*AssetLocker)(nil)

// Validate ensures the AssetLocker is valid.
func (l *AssetLocker) Validate() error {
	if err := l.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := l.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if len(l.AssetID) == 0 {
		return errors.Wrap(errors.ErrEmpty, "asset id")
	}
	if err := l.LockedAt.Validate(); err != nil {
		return errors.Wrap(err, "locked at")
	}
	if l.LockedAt == 0 {
		return errors.Wrap(errors.ErrInput, "locked at is required")
	}
	if err := l.Fee.Validate(); err != nil {
		return errors.Wrap(err, "fee")
	}
	return nil
}

// Copy makes a new AssetLocker.
func (l *AssetLocker) Copy() orm.CloneableData {
	return &AssetLocker{
		Metadata: l.Metadata.Copy(),
		Owner:    l.Owner.Clone(),
		AssetID:  l.AssetID,
		LockedAt: l.LockedAt,
		Fee:      l.Fee,
	}
}

// lockerKey returns the store key of the locker entry of given asset and
// depositor. The owner address is a fixed size suffix so the key cannot
// collide for different (asset, owner) pairs.
func lockerKey(assetID []byte, owner weave.Address) []byte {
	key := make([]byte, 0, len(assetID)+weave.AddressLength)
	key = append(key, assetID...)
	return append(key, owner...)
}

// NewBucket returns a bucket for keeping track of locker entries. Every
// asset can have at most one outstanding locker, enforced by the unique
// asset index.
func NewBucket() orm.ModelBucket {
	b := orm.NewModelBucket("locker", &AssetLocker{},
		orm.WithIndex("asset", idxAsset, true),
	)
	return migration.NewModelBucket("vault", b)
}

func toLocker(obj orm.Object) (*AssetLocker, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "Cannot take index of nil")
	}
	l, ok := obj.Value().(*AssetLocker)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "Can only take index of AssetLocker")
	}
	return l, nil
}

func idxAsset(obj orm.Object) ([]byte, error) {
	l, err := toLocker(obj)
	if err != nil {
		return nil, err
	}
	return l.AssetID, nil
}
