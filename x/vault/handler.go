package vault

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/nftvault/vaultd/x/asset"
)

const (
	initCost   int64 = 0
	lockCost   int64 = 300
	unlockCost int64 = 0
	swapCost   int64 = 0
)

// RegisterRoutes will instantiate and register
// all handlers in this package.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, cashctrl cash.CoinMover, assets asset.Controller) {
	r = migration.SchemaMigratingRegistry("vault", r)
	bucket := NewBucket()

	r.Handle(&InitMsg{}, InitHandler{auth: auth})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(
		"vault", &Configuration{}, auth, migration.CurrentAdmin))
	r.Handle(&LockMsg{}, LockHandler{auth: auth, bucket: bucket, bank: cashctrl, assets: assets})
	r.Handle(&UnlockMsg{}, UnlockHandler{auth: auth, bucket: bucket, assets: assets})
	r.Handle(&SwapMsg{}, SwapHandler{auth: auth, bucket: bucket, assets: assets})
}

// RegisterQuery will register the locker bucket as "/lockers".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("lockers", qr)
}

//---- init

// InitHandler creates the configuration. The first signer becomes the
// configuration owner. Creating the configuration a second time fails.
type InitHandler struct {
	auth x.Authenticator
}

var _ weave.Handler = InitHandler{}

func (h InitHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: initCost}, nil
}

func (h InitHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf := Configuration{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    owner,
		Vault:    VaultAddress(),
		Fee:      msg.Fee,
	}
	if err := gconf.Save(db, "vault", &conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	return &weave.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h InitHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*InitMsg, weave.Address, error) {
	var msg InitMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}

	switch _, err := loadConf(db); {
	case err == nil:
		return nil, nil, ErrInitialized
	case errors.ErrNotFound.Is(err):
		// Expected. The configuration can be created.
	default:
		return nil, nil, err
	}
	return &msg, signer.Address(), nil
}

//---- lock

// LockHandler deposits an asset into the vault. Custody of the asset is
// transferred to the vault address, the configured fee is collected from
// the depositor and a locker entry records the deposit.
type LockHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.CoinMover
	assets asset.Controller
}

var _ weave.Handler = LockHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h LockHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: lockCost}, nil
}

// Deliver moves the asset into the vault if all conditions are met.
func (h LockHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, conf, sender, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}

	locker := &AssetLocker{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    sender,
		AssetID:  msg.AssetID,
		LockedAt: weave.AsUnixTime(now),
		Fee:      conf.Fee,
	}
	key := lockerKey(msg.AssetID, sender)
	if _, err := h.bucket.Put(db, key, locker); err != nil {
		return nil, errors.Wrap(err, "cannot store locker")
	}

	if err := h.assets.Transfer(db, msg.AssetID, sender, conf.Vault); err != nil {
		return nil, errors.Wrap(err, "custody transfer")
	}
	if conf.Fee.IsPositive() {
		if err := h.bank.MoveCoins(db, sender, conf.Vault, conf.Fee); err != nil {
			return nil, errors.Wrap(err, "fee payment")
		}
	}
	return &weave.DeliverResult{Data: key}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h LockHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*LockMsg, *Configuration, weave.Address, error) {
	var msg LockMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}

	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}
	sender := signer.Address()

	// The fee is declared within the message so that the depositor
	// cannot be surprised by a configuration change between signing and
	// execution.
	if !msg.Fee.Equals(conf.Fee) {
		return nil, nil, nil, errors.Wrapf(ErrInvalidFee, "expected %s", conf.Fee)
	}

	var lockers []*AssetLocker
	if _, err := h.bucket.ByIndex(db, "asset", msg.AssetID, &lockers); err != nil {
		return nil, nil, nil, errors.Wrap(err, "asset index")
	}
	if len(lockers) != 0 {
		return nil, nil, nil, ErrAlreadyLocked
	}

	owner, err := h.assets.Owner(db, msg.AssetID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !owner.Equals(sender) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "asset not owned by sender")
	}

	return &msg, &conf, sender, nil
}

//---- unlock

// UnlockHandler returns a locked asset to its depositor. The lock fee is
// not refunded.
type UnlockHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	assets asset.Controller
}

var _ weave.Handler = UnlockHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h UnlockHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: unlockCost}, nil
}

// Deliver returns the asset to the depositor and removes the locker.
func (h UnlockHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, conf, sender, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if err := h.bucket.Delete(db, lockerKey(msg.AssetID, sender)); err != nil {
		return nil, errors.Wrap(err, "cannot delete locker")
	}
	if err := h.assets.Transfer(db, msg.AssetID, conf.Vault, sender); err != nil {
		return nil, errors.Wrap(err, "custody transfer")
	}
	return &weave.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h UnlockHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*UnlockMsg, *Configuration, weave.Address, error) {
	var msg UnlockMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, nil, err
	}

	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}
	sender := signer.Address()

	// The locker is keyed by asset and owner so a depositor can only
	// reach entries created by themselves.
	var locker AssetLocker
	if err := h.bucket.One(db, lockerKey(msg.AssetID, sender), &locker); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, nil, nil, ErrNoLocker
		}
		return nil, nil, nil, err
	}

	return &msg, &conf, sender, nil
}

//---- swap

// SwapHandler exchanges two locked assets between their depositors. Both
// locker entries are consumed and each party receives custody of the asset
// deposited by the other.
type SwapHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	assets asset.Controller
}

var _ weave.Handler = SwapHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h SwapHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: swapCost}, nil
}

// Deliver consumes both locker entries and releases each asset to the
// depositor of the other one.
func (h SwapHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	swap, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if err := h.bucket.Delete(db, lockerKey(swap.offered.AssetID, swap.offered.Owner)); err != nil {
		return nil, errors.Wrap(err, "cannot delete offered locker")
	}
	if err := h.bucket.Delete(db, lockerKey(swap.counter.AssetID, swap.counter.Owner)); err != nil {
		return nil, errors.Wrap(err, "cannot delete counter locker")
	}

	if err := h.assets.Transfer(db, swap.offered.AssetID, swap.vault, swap.counter.Owner); err != nil {
		return nil, errors.Wrap(err, "offered custody transfer")
	}
	if err := h.assets.Transfer(db, swap.counter.AssetID, swap.vault, swap.offered.Owner); err != nil {
		return nil, errors.Wrap(err, "counter custody transfer")
	}
	return &weave.DeliverResult{}, nil
}

type swapLockers struct {
	offered *AssetLocker
	counter *AssetLocker
	vault   weave.Address
}

// validate does all common pre-processing between Check and Deliver.
func (h SwapHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*swapLockers, error) {
	var msg SwapMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	signer := x.AnySigner(ctx, h.auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "transaction must be signed")
	}
	sender := signer.Address()

	// The sender must be the depositor of the offered asset.
	var offered AssetLocker
	if err := h.bucket.One(db, lockerKey(msg.OfferedAssetID, sender), &offered); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(ErrNoLocker, "offered asset")
		}
		return nil, err
	}

	// The counter asset can be locked by anyone, located through the
	// unique asset index.
	var counters []*AssetLocker
	if _, err := h.bucket.ByIndex(db, "asset", msg.CounterAssetID, &counters); err != nil {
		return nil, errors.Wrap(err, "asset index")
	}
	if len(counters) == 0 {
		return nil, errors.Wrap(ErrNoLocker, "counter asset")
	}
	counter := counters[0]

	if counter.Owner.Equals(sender) {
		return nil, ErrSelfSwap
	}

	return &swapLockers{offered: &offered, counter: counter, vault: conf.Vault}, nil
}
