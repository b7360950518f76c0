package asset_test

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftvault/vaultd/x/asset"
)

func TestCreateCollectionHandler(t *testing.T) {
	issuer := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	bucket := asset.NewCollectionBucket()

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	asset.RegisterRoutes(r, auth, issuer.Address())

	cases := map[string]struct {
		signer         weave.Condition
		setup          func(t *testing.T, db weave.KVStore)
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			signer: issuer,
		},
		"only the issuer can register a collection": {
			signer:         stranger,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"collection can be registered only once": {
			signer: issuer,
			setup: func(t *testing.T, db weave.KVStore) {
				coll := asset.Collection{
					Metadata: &weave.Metadata{Schema: 1},
					ID:       []byte("art"),
					Owner:    issuer.Address(),
					Name:     "Art collection",
				}
				_, err := bucket.Put(db, coll.ID, &coll)
				require.NoError(t, err)
			},
			wantDeliverErr: errors.ErrDuplicate,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "asset")
			if tc.setup != nil {
				tc.setup(t, db)
			}

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = authenticator.SetConditions(ctx, tc.signer)

			tx := &weavetest.Tx{Msg: &asset.CreateCollectionMsg{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       []byte("art"),
				Name:     "Art collection",
			}}
			res, err := r.Deliver(ctx, db, tx)
			if tc.wantDeliverErr != nil {
				assert.True(t, tc.wantDeliverErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte("art"), res.Data)

			var coll asset.Collection
			require.NoError(t, bucket.One(db, []byte("art"), &coll))
			assert.Equal(t, issuer.Address(), coll.Owner)
		})
	}
}

func TestIssueHandler(t *testing.T) {
	issuer := weavetest.NewCondition()
	alice := weavetest.NewCondition()

	collections := asset.NewCollectionBucket()
	assets := asset.NewBucket()

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	asset.RegisterRoutes(r, auth, issuer.Address())

	saveCollection := func(t *testing.T, db weave.KVStore) {
		coll := asset.Collection{
			Metadata: &weave.Metadata{Schema: 1},
			ID:       []byte("art"),
			Owner:    issuer.Address(),
			Name:     "Art collection",
		}
		_, err := collections.Put(db, coll.ID, &coll)
		require.NoError(t, err)
	}

	cases := map[string]struct {
		signer         weave.Condition
		setup          func(t *testing.T, db weave.KVStore)
		mutator        func(msg *asset.IssueMsg)
		wantDeliverErr *errors.Error
		wantOwner      weave.Address
	}{
		"happy path": {
			signer:    issuer,
			setup:     saveCollection,
			wantOwner: alice.Address(),
		},
		"owner defaults to the first signer": {
			signer: issuer,
			setup:  saveCollection,
			mutator: func(msg *asset.IssueMsg) {
				msg.Owner = nil
			},
			wantOwner: issuer.Address(),
		},
		"only the issuer can mint": {
			signer:         alice,
			setup:          saveCollection,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"unknown collection": {
			signer:         issuer,
			wantDeliverErr: asset.ErrNoCollection,
		},
		"asset can be minted only once": {
			signer: issuer,
			setup: func(t *testing.T, db weave.KVStore) {
				saveCollection(t, db)
				a := asset.Asset{
					Metadata: &weave.Metadata{Schema: 1},
					ID:       []byte("asset-1"),
					Owner:    alice.Address(),
					Name:     "Sunrise",
				}
				_, err := assets.Put(db, a.ID, &a)
				require.NoError(t, err)
			},
			wantDeliverErr: errors.ErrDuplicate,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "asset")
			if tc.setup != nil {
				tc.setup(t, db)
			}

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = authenticator.SetConditions(ctx, tc.signer)

			msg := &asset.IssueMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ID:         []byte("asset-1"),
				Owner:      alice.Address(),
				Collection: []byte("art"),
				Name:       "Sunrise",
			}
			if tc.mutator != nil {
				tc.mutator(msg)
			}
			res, err := r.Deliver(ctx, db, &weavetest.Tx{Msg: msg})
			if tc.wantDeliverErr != nil {
				assert.True(t, tc.wantDeliverErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte("asset-1"), res.Data)

			var a asset.Asset
			require.NoError(t, assets.One(db, []byte("asset-1"), &a))
			assert.Equal(t, tc.wantOwner, a.Owner)
		})
	}
}

func TestTransferHandler(t *testing.T) {
	issuer := weavetest.NewCondition()
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()

	assets := asset.NewBucket()
	ctrl := asset.NewController(assets)

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	asset.RegisterRoutes(r, auth, issuer.Address())

	cases := map[string]struct {
		signer         weave.Condition
		assetID        []byte
		wantDeliverErr *errors.Error
	}{
		"happy path": {
			signer:  alice,
			assetID: []byte("asset-1"),
		},
		"only the custody holder can transfer": {
			signer:         bob,
			assetID:        []byte("asset-1"),
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"unknown asset": {
			signer:         alice,
			assetID:        []byte("unknown"),
			wantDeliverErr: asset.ErrNoAsset,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "asset")

			a := asset.Asset{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       []byte("asset-1"),
				Owner:    alice.Address(),
				Name:     "Sunrise",
			}
			_, err := assets.Put(db, a.ID, &a)
			require.NoError(t, err)

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = authenticator.SetConditions(ctx, tc.signer)

			tx := &weavetest.Tx{Msg: &asset.TransferMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				AssetID:     tc.assetID,
				Destination: bob.Address(),
			}}
			_, err = r.Deliver(ctx, db, tx)
			if tc.wantDeliverErr != nil {
				assert.True(t, tc.wantDeliverErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)

			owner, err := ctrl.Owner(db, tc.assetID)
			require.NoError(t, err)
			assert.Equal(t, bob.Address(), owner)
		})
	}
}
