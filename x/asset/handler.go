package asset

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
)

const (
	createCollectionCost int64 = 100
	issueCost            int64 = 100
	transferCost         int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this package.
//
// Issuer is an optional address. When provided, only the issuer can register
// collections and mint assets.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, issuer weave.Address) {
	r = migration.SchemaMigratingRegistry("asset", r)

	collections := NewCollectionBucket()
	assets := NewBucket()

	r.Handle(&CreateCollectionMsg{}, CreateCollectionHandler{auth: auth, issuer: issuer, bucket: collections})
	r.Handle(&IssueMsg{}, IssueHandler{auth: auth, issuer: issuer, bucket: assets, collections: collections})
	r.Handle(&TransferMsg{}, TransferHandler{auth: auth, ctrl: NewController(assets)})
}

// RegisterQuery will register buckets as "/assets" and "/collections".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("assets", qr)
	NewCollectionBucket().Register("collections", qr)
}

// CreateCollectionHandler registers a new collection.
type CreateCollectionHandler struct {
	auth   x.Authenticator
	issuer weave.Address
	bucket orm.ModelBucket
}

var _ weave.Handler = CreateCollectionHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h CreateCollectionHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createCollectionCost}, nil
}

// Deliver persists the collection if all preconditions are met.
func (h CreateCollectionHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	coll := &Collection{
		Metadata: &weave.Metadata{Schema: 1},
		ID:       msg.ID,
		Owner:    x.AnySigner(ctx, h.auth).Address(),
		Name:     msg.Name,
	}
	if _, err := h.bucket.Put(db, coll.ID, coll); err != nil {
		return nil, errors.Wrap(err, "cannot store collection")
	}
	return &weave.DeliverResult{Data: coll.ID}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h CreateCollectionHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateCollectionMsg, error) {
	var msg CreateCollectionMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	if h.issuer != nil && !h.auth.HasAddress(ctx, h.issuer) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "collections only registered by %s", h.issuer)
	}

	// A collection can be registered only once and must not be updated.
	var existing Collection
	switch err := h.bucket.One(db, msg.ID, &existing); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "collection %X", msg.ID)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	return &msg, nil
}

// IssueHandler mints a new asset.
type IssueHandler struct {
	auth        x.Authenticator
	issuer      weave.Address
	bucket      orm.ModelBucket
	collections orm.ModelBucket
}

var _ weave.Handler = IssueHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h IssueHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: issueCost}, nil
}

// Deliver mints the asset if all preconditions are met.
func (h IssueHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	owner := msg.Owner
	if owner == nil {
		owner = x.AnySigner(ctx, h.auth).Address()
	}

	a := &Asset{
		Metadata:   &weave.Metadata{Schema: 1},
		ID:         msg.ID,
		Owner:      owner,
		Collection: msg.Collection,
		Name:       msg.Name,
		URI:        msg.URI,
	}
	if _, err := h.bucket.Put(db, a.ID, a); err != nil {
		return nil, errors.Wrap(err, "cannot store asset")
	}
	return &weave.DeliverResult{Data: a.ID}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h IssueHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*IssueMsg, error) {
	var msg IssueMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	if h.issuer != nil && !h.auth.HasAddress(ctx, h.issuer) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "assets only issued by %s", h.issuer)
	}

	if len(msg.Collection) != 0 {
		var coll Collection
		if err := h.collections.One(db, msg.Collection, &coll); err != nil {
			if errors.ErrNotFound.Is(err) {
				return nil, errors.Wrapf(ErrNoCollection, "%X", msg.Collection)
			}
			return nil, err
		}
	}

	// An asset can be minted only once.
	var existing Asset
	switch err := h.bucket.One(db, msg.ID, &existing); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "asset %X", msg.ID)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	return &msg, nil
}

// TransferHandler moves the custody of an asset. The transaction must be
// signed by the current custody holder.
type TransferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ weave.Handler = TransferHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h TransferHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: transferCost}, nil
}

// Deliver reassigns the custody if all preconditions are met.
func (h TransferHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(db, msg.AssetID, owner, msg.Destination); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h TransferHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*TransferMsg, weave.Address, error) {
	var msg TransferMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	owner, err := h.ctrl.Owner(db, msg.AssetID)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, owner) {
		return nil, nil, errors.ErrUnauthorized
	}

	return &msg, owner, nil
}
