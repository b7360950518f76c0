package vault_test

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/nftvault/vaultd/x/asset"
	"github.com/nftvault/vaultd/x/vault"
)

func TestConfigurationValidate(t *testing.T) {
	owner := weavetest.NewCondition().Address()

	cases := map[string]struct {
		conf    *vault.Configuration
		wantErr *errors.Error
	}{
		"valid configuration": {
			conf: &vault.Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				Vault:    vault.VaultAddress(),
				Fee:      coin.NewCoin(0, 5, "IOV"),
			},
		},
		"missing owner": {
			conf: &vault.Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Vault:    vault.VaultAddress(),
				Fee:      coin.NewCoin(0, 5, "IOV"),
			},
			wantErr: errors.ErrEmpty,
		},
		"missing vault address": {
			conf: &vault.Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				Fee:      coin.NewCoin(0, 5, "IOV"),
			},
			wantErr: errors.ErrEmpty,
		},
		"negative fee": {
			conf: &vault.Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				Vault:    vault.VaultAddress(),
				Fee:      coin.NewCoin(0, -5, "IOV"),
			},
			wantErr: errors.ErrState,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := tc.conf.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected validation error: %+v", err)
			}
		})
	}
}

func TestUpdateConfiguration(t *testing.T) {
	admin := weavetest.NewCondition()
	stranger := weavetest.NewCondition()

	r := app.NewRouter()
	authenticator := &weavetest.CtxAuth{Key: "auth"}
	auth := x.ChainAuth(authenticator)
	vault.RegisterRoutes(r, auth, cash.NewController(cash.NewBucket()), asset.NewController(asset.NewBucket()))

	cases := map[string]struct {
		signer         weave.Condition
		wantDeliverErr *errors.Error
	}{
		"owner can update the fee": {
			signer: admin,
		},
		"stranger cannot update the fee": {
			signer:         stranger,
			wantDeliverErr: errors.ErrUnauthorized,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "vault")

			conf := vault.Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    admin.Address(),
				Vault:    vault.VaultAddress(),
				Fee:      coin.NewCoin(0, 5, "IOV"),
			}
			assert.Nil(t, gconf.Save(db, "vault", &conf))

			ctx := weave.WithHeight(context.Background(), 500)
			ctx = authenticator.SetConditions(ctx, tc.signer)

			newFee := coin.NewCoin(0, 7, "IOV")
			tx := &weavetest.Tx{Msg: &vault.UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch: &vault.Configuration{
					Fee: newFee,
				},
			}}
			if _, err := r.Deliver(ctx, db, tx); !tc.wantDeliverErr.Is(err) {
				t.Fatalf("deliver expected: %+v  but got %+v", tc.wantDeliverErr, err)
			}
			if tc.wantDeliverErr == nil {
				var loaded vault.Configuration
				assert.Nil(t, gconf.Load(db, "vault", &loaded))
				assert.Equal(t, true, loaded.Fee.Equals(newFee))
				// The rest of the configuration stays the same.
				assert.Equal(t, admin.Address(), loaded.Owner)
			}
		})
	}
}
