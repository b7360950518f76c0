package asset

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
)

// Controller is the functionality needed by other extensions to query and
// move asset custody. BaseController should work plenty fine.
type Controller interface {
	OwnerOf
	CustodyMover
}

// OwnerOf is the interface for querying the current custody holder of an
// asset.
type OwnerOf interface {
	Owner(db weave.ReadOnlyKVStore, assetID []byte) (weave.Address, error)
}

// CustodyMover is the interface for moving asset custody between accounts.
type CustodyMover interface {
	Transfer(db weave.KVStore, assetID []byte, src weave.Address, dst weave.Address) error
}

// BaseController implements Controller. It is the custody transfer primitive
// and either moves the full custody of an asset or fails without any change.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Owner returns the current custody holder of an asset. It returns ErrNoAsset
// if the asset is not registered.
func (c BaseController) Owner(db weave.ReadOnlyKVStore, assetID []byte) (weave.Address, error) {
	var a Asset
	if err := c.bucket.One(db, assetID, &a); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrNoAsset, "%X", assetID)
		}
		return nil, err
	}
	return a.Owner, nil
}

// Transfer reassigns the custody of an asset from src to dst. It fails when
// the asset does not exist or when src does not hold the custody. On failure
// no state is modified.
func (c BaseController) Transfer(db weave.KVStore, assetID []byte, src weave.Address, dst weave.Address) error {
	var a Asset
	if err := c.bucket.One(db, assetID, &a); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(ErrNoAsset, "%X", assetID)
		}
		return err
	}
	if !a.Owner.Equals(src) {
		return errors.Wrap(errors.ErrUnauthorized, "custody not held by source")
	}
	if err := dst.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	a.Owner = dst
	if _, err := c.bucket.Put(db, a.ID, &a); err != nil {
		return errors.Wrap(err, "cannot store asset")
	}
	return nil
}
