package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/nftvault/vaultd/x/asset"
	"github.com/nftvault/vaultd/x/vault"
)

var (
	blockNow = time.Now()
)

func TestInitHandler(t *testing.T) {
	admin := weavetest.NewCondition()
	lockFee := coin.NewCoin(0, 5, "TEST")

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	vault.RegisterRoutes(r, auth, cash.NewController(cash.NewBucket()), asset.NewController(asset.NewBucket()))

	cases := map[string]struct {
		setup          func(ctx weave.Context, db weave.KVStore) weave.Context
		check          func(t *testing.T, db weave.KVStore)
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				return authenticator.SetConditions(ctx, admin)
			},
			check: func(t *testing.T, db weave.KVStore) {
				var conf vault.Configuration
				assert.Nil(t, gconf.Load(db, "vault", &conf))
				assert.Equal(t, admin.Address(), conf.Owner)
				assert.Equal(t, vault.VaultAddress(), conf.Vault)
				assert.Equal(t, true, conf.Fee.Equals(lockFee))
			},
		},
		"no signer": {
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"already initialized": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				return authenticator.SetConditions(ctx, admin)
			},
			wantCheckErr:   vault.ErrInitialized,
			wantDeliverErr: vault.ErrInitialized,
		},
	}

	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "vault")

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = weave.WithBlockTime(ctx, blockNow)
			if spec.setup != nil {
				ctx = spec.setup(ctx, db)
			}
			cache := db.CacheWrap()

			tx := &weavetest.Tx{Msg: &vault.InitMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Fee:      lockFee,
			}}
			if _, err := r.Check(ctx, cache, tx); !spec.wantCheckErr.Is(err) {
				t.Fatalf("check expected: %+v  but got %+v", spec.wantCheckErr, err)
			}

			cache.Discard()

			if _, err := r.Deliver(ctx, cache, tx); !spec.wantDeliverErr.Is(err) {
				t.Fatalf("deliver expected: %+v  but got %+v", spec.wantDeliverErr, err)
			}
			if spec.check != nil {
				spec.check(t, cache)
			}
			assert.Nil(t, cache.Write())
		})
	}
}

func TestLockHandler(t *testing.T) {
	admin := weavetest.NewCondition()
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	assetID := []byte("asset-1")
	lockFee := coin.NewCoin(0, 5, "TEST")
	initialCoins, err := coin.CombineCoins(coin.NewCoin(1, 0, "TEST"))
	assert.Nil(t, err)

	bank := cash.NewBucket()
	cashctrl := cash.NewController(bank)
	assets := asset.NewBucket()
	assetctrl := asset.NewController(assets)
	lockers := vault.NewBucket()

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	vault.RegisterRoutes(r, auth, cashctrl, assetctrl)

	setBalance := func(t *testing.T, db weave.KVStore, addr weave.Address, coins coin.Coins) {
		acct, err := cash.WalletWith(addr, coins...)
		assert.Nil(t, err)
		assert.Nil(t, bank.Save(db, acct))
	}

	cases := map[string]struct {
		setup          func(ctx weave.Context, db weave.KVStore) weave.Context
		check          func(t *testing.T, db weave.KVStore)
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		mutator        func(msg *vault.LockMsg)
	}{
		"happy path": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, alice.Address())
				setBalance(t, db, alice.Address(), initialCoins)
				return authenticator.SetConditions(ctx, alice)
			},
			check: func(t *testing.T, db weave.KVStore) {
				var locker vault.AssetLocker
				key := append(assetID, alice.Address()...)
				assert.Nil(t, lockers.One(db, key, &locker))
				assert.Equal(t, alice.Address(), locker.Owner)
				assert.Equal(t, assetID, locker.AssetID)
				assert.Equal(t, true, locker.Fee.Equals(lockFee))

				owner, err := assetctrl.Owner(db, assetID)
				assert.Nil(t, err)
				assert.Equal(t, vault.VaultAddress(), owner)

				acct, err := bank.Get(db, vault.VaultAddress())
				assert.Nil(t, err)
				wantFee, err := coin.CombineCoins(lockFee)
				assert.Nil(t, err)
				assert.Equal(t, true, cash.AsCoins(acct).Equals(wantFee))
			},
		},
		"not initialized": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveAsset(t, db, assets, assetID, alice.Address())
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   errors.ErrNotFound,
			wantDeliverErr: errors.ErrNotFound,
		},
		"fee mismatch": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, alice.Address())
				return authenticator.SetConditions(ctx, alice)
			},
			mutator: func(msg *vault.LockMsg) {
				msg.Fee = coin.NewCoin(0, 1, "TEST")
			},
			wantCheckErr:   vault.ErrInvalidFee,
			wantDeliverErr: vault.ErrInvalidFee,
		},
		"already locked": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, vault.VaultAddress())
				saveLocker(t, db, lockers, assetID, bob.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   vault.ErrAlreadyLocked,
			wantDeliverErr: vault.ErrAlreadyLocked,
		},
		"asset does not exist": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   asset.ErrNoAsset,
			wantDeliverErr: asset.ErrNoAsset,
		},
		"sender does not own the asset": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, bob.Address())
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"insufficient funds for the fee": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, alice.Address())
				return authenticator.SetConditions(ctx, alice)
			},
			wantDeliverErr: errors.ErrEmpty,
		},
	}

	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "vault", "cash", "asset")

			msg := &vault.LockMsg{
				Metadata: &weave.Metadata{Schema: 1},
				AssetID:  assetID,
				Fee:      lockFee,
			}
			ctx := weave.WithHeight(context.Background(), 500)
			ctx = weave.WithBlockTime(ctx, blockNow)
			if spec.setup != nil {
				ctx = spec.setup(ctx, db)
			}
			if spec.mutator != nil {
				spec.mutator(msg)
			}
			cache := db.CacheWrap()

			tx := &weavetest.Tx{Msg: msg}
			if _, err := r.Check(ctx, cache, tx); !spec.wantCheckErr.Is(err) {
				t.Fatalf("check expected: %+v  but got %+v", spec.wantCheckErr, err)
			}

			cache.Discard()

			if _, err := r.Deliver(ctx, cache, tx); !spec.wantDeliverErr.Is(err) {
				t.Fatalf("deliver expected: %+v  but got %+v", spec.wantDeliverErr, err)
			}
			if spec.check != nil {
				spec.check(t, cache)
			}
			assert.Nil(t, cache.Write())
		})
	}
}

func TestUnlockHandler(t *testing.T) {
	admin := weavetest.NewCondition()
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	assetID := []byte("asset-1")
	lockFee := coin.NewCoin(0, 5, "TEST")

	assets := asset.NewBucket()
	assetctrl := asset.NewController(assets)
	lockers := vault.NewBucket()

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	vault.RegisterRoutes(r, auth, cash.NewController(cash.NewBucket()), assetctrl)

	cases := map[string]struct {
		setup          func(ctx weave.Context, db weave.KVStore) weave.Context
		check          func(t *testing.T, db weave.KVStore)
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, vault.VaultAddress())
				saveLocker(t, db, lockers, assetID, alice.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			check: func(t *testing.T, db weave.KVStore) {
				var locker vault.AssetLocker
				key := append(assetID, alice.Address()...)
				err := lockers.One(db, key, &locker)
				if !errors.ErrNotFound.Is(err) {
					t.Fatalf("locker must be deleted, got %+v", err)
				}
				owner, err := assetctrl.Owner(db, assetID)
				assert.Nil(t, err)
				assert.Equal(t, alice.Address(), owner)
			},
		},
		"no locker": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   vault.ErrNoLocker,
			wantDeliverErr: vault.ErrNoLocker,
		},
		"locker of another depositor": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, assetID, vault.VaultAddress())
				saveLocker(t, db, lockers, assetID, bob.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   vault.ErrNoLocker,
			wantDeliverErr: vault.ErrNoLocker,
		},
	}

	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "vault", "cash", "asset")

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = weave.WithBlockTime(ctx, blockNow)
			if spec.setup != nil {
				ctx = spec.setup(ctx, db)
			}
			cache := db.CacheWrap()

			tx := &weavetest.Tx{Msg: &vault.UnlockMsg{
				Metadata: &weave.Metadata{Schema: 1},
				AssetID:  assetID,
			}}
			if _, err := r.Check(ctx, cache, tx); !spec.wantCheckErr.Is(err) {
				t.Fatalf("check expected: %+v  but got %+v", spec.wantCheckErr, err)
			}

			cache.Discard()

			if _, err := r.Deliver(ctx, cache, tx); !spec.wantDeliverErr.Is(err) {
				t.Fatalf("deliver expected: %+v  but got %+v", spec.wantDeliverErr, err)
			}
			if spec.check != nil {
				spec.check(t, cache)
			}
			assert.Nil(t, cache.Write())
		})
	}
}

func TestSwapHandler(t *testing.T) {
	admin := weavetest.NewCondition()
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	offeredID := []byte("asset-1")
	counterID := []byte("asset-2")
	lockFee := coin.NewCoin(0, 5, "TEST")

	assets := asset.NewBucket()
	assetctrl := asset.NewController(assets)
	lockers := vault.NewBucket()

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	vault.RegisterRoutes(r, auth, cash.NewController(cash.NewBucket()), assetctrl)

	cases := map[string]struct {
		setup          func(ctx weave.Context, db weave.KVStore) weave.Context
		check          func(t *testing.T, db weave.KVStore)
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, offeredID, vault.VaultAddress())
				saveAsset(t, db, assets, counterID, vault.VaultAddress())
				saveLocker(t, db, lockers, offeredID, alice.Address(), lockFee)
				saveLocker(t, db, lockers, counterID, bob.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			check: func(t *testing.T, db weave.KVStore) {
				// Both entries are consumed.
				var locker vault.AssetLocker
				err := lockers.One(db, append(offeredID, alice.Address()...), &locker)
				if !errors.ErrNotFound.Is(err) {
					t.Fatalf("offered locker must be deleted, got %+v", err)
				}
				err = lockers.One(db, append(counterID, bob.Address()...), &locker)
				if !errors.ErrNotFound.Is(err) {
					t.Fatalf("counter locker must be deleted, got %+v", err)
				}

				// Each party received the asset deposited by
				// the other one.
				owner, err := assetctrl.Owner(db, offeredID)
				assert.Nil(t, err)
				assert.Equal(t, bob.Address(), owner)
				owner, err = assetctrl.Owner(db, counterID)
				assert.Nil(t, err)
				assert.Equal(t, alice.Address(), owner)
			},
		},
		"offered asset not locked by sender": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, counterID, vault.VaultAddress())
				saveLocker(t, db, lockers, counterID, bob.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   vault.ErrNoLocker,
			wantDeliverErr: vault.ErrNoLocker,
		},
		"counter asset not locked": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, offeredID, vault.VaultAddress())
				saveLocker(t, db, lockers, offeredID, alice.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   vault.ErrNoLocker,
			wantDeliverErr: vault.ErrNoLocker,
		},
		"swap with yourself": {
			setup: func(ctx weave.Context, db weave.KVStore) weave.Context {
				saveConf(t, db, admin.Address(), lockFee)
				saveAsset(t, db, assets, offeredID, vault.VaultAddress())
				saveAsset(t, db, assets, counterID, vault.VaultAddress())
				saveLocker(t, db, lockers, offeredID, alice.Address(), lockFee)
				saveLocker(t, db, lockers, counterID, alice.Address(), lockFee)
				return authenticator.SetConditions(ctx, alice)
			},
			wantCheckErr:   vault.ErrSelfSwap,
			wantDeliverErr: vault.ErrSelfSwap,
		},
	}

	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "vault", "cash", "asset")

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = weave.WithBlockTime(ctx, blockNow)
			if spec.setup != nil {
				ctx = spec.setup(ctx, db)
			}
			cache := db.CacheWrap()

			tx := &weavetest.Tx{Msg: &vault.SwapMsg{
				Metadata:       &weave.Metadata{Schema: 1},
				OfferedAssetID: offeredID,
				CounterAssetID: counterID,
			}}
			if _, err := r.Check(ctx, cache, tx); !spec.wantCheckErr.Is(err) {
				t.Fatalf("check expected: %+v  but got %+v", spec.wantCheckErr, err)
			}

			cache.Discard()

			if _, err := r.Deliver(ctx, cache, tx); !spec.wantDeliverErr.Is(err) {
				t.Fatalf("deliver expected: %+v  but got %+v", spec.wantDeliverErr, err)
			}
			if spec.check != nil {
				spec.check(t, cache)
			}
			assert.Nil(t, cache.Write())
		})
	}
}

func saveConf(t *testing.T, db weave.KVStore, owner weave.Address, fee coin.Coin) {
	t.Helper()
	conf := vault.Configuration{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    owner,
		Vault:    vault.VaultAddress(),
		Fee:      fee,
	}
	assert.Nil(t, gconf.Save(db, "vault", &conf))
}

func saveAsset(t *testing.T, db weave.KVStore, bucket orm.ModelBucket, assetID []byte, owner weave.Address) {
	t.Helper()
	a := asset.Asset{
		Metadata: &weave.Metadata{Schema: 1},
		ID:       assetID,
		Owner:    owner,
		Name:     "A test asset",
	}
	_, err := bucket.Put(db, assetID, &a)
	assert.Nil(t, err)
}

func saveLocker(t *testing.T, db weave.KVStore, bucket orm.ModelBucket, assetID []byte, owner weave.Address, fee coin.Coin) {
	t.Helper()
	locker := vault.AssetLocker{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    owner,
		AssetID:  assetID,
		LockedAt: weave.AsUnixTime(blockNow),
		Fee:      fee,
	}
	key := append([]byte{}, assetID...)
	key = append(key, owner...)
	_, err := bucket.Put(db, key, &locker)
	assert.Nil(t, err)
}
