package vault

import (
	"testing"
	"time"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestAssetLockerValidate(t *testing.T) {
	now := weave.AsUnixTime(time.Now())
	owner := weavetest.NewCondition().Address()

	cases := map[string]struct {
		model   *AssetLocker
		wantErr *errors.Error
	}{
		"valid model": {
			model: &AssetLocker{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				AssetID:  []byte("asset-1"),
				LockedAt: now,
				Fee:      coin.NewCoin(0, 5, "IOV"),
			},
		},
		"missing metadata": {
			model: &AssetLocker{
				Owner:    owner,
				AssetID:  []byte("asset-1"),
				LockedAt: now,
			},
			wantErr: errors.ErrMetadata,
		},
		"missing owner": {
			model: &AssetLocker{
				Metadata: &weave.Metadata{Schema: 1},
				AssetID:  []byte("asset-1"),
				LockedAt: now,
			},
			wantErr: errors.ErrEmpty,
		},
		"missing asset id": {
			model: &AssetLocker{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				LockedAt: now,
			},
			wantErr: errors.ErrEmpty,
		},
		"missing lock time": {
			model: &AssetLocker{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    owner,
				AssetID:  []byte("asset-1"),
			},
			wantErr: errors.ErrInput,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := tc.model.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected validation error: %+v", err)
			}
		})
	}
}

func TestLockerKey(t *testing.T) {
	owner := weavetest.NewCondition().Address()
	other := weavetest.NewCondition().Address()
	assetID := []byte("asset-1")

	key := lockerKey(assetID, owner)
	assert.Equal(t, len(assetID)+weave.AddressLength, len(key))

	// Different owners of the same asset must not collide.
	if string(key) == string(lockerKey(assetID, other)) {
		t.Fatal("keys of different owners must differ")
	}
}

func TestAssetIndexIsUnique(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "vault")

	bucket := NewBucket()
	now := weave.AsUnixTime(time.Now())

	first := &AssetLocker{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    weavetest.NewCondition().Address(),
		AssetID:  []byte("asset-1"),
		LockedAt: now,
		Fee:      coin.NewCoin(0, 5, "IOV"),
	}
	_, err := bucket.Put(db, lockerKey(first.AssetID, first.Owner), first)
	assert.Nil(t, err)

	// A second locker for the same asset violates the unique index.
	second := first.Copy().(*AssetLocker)
	second.Owner = weavetest.NewCondition().Address()
	if _, err := bucket.Put(db, lockerKey(second.AssetID, second.Owner), second); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want a duplicate error, got %+v", err)
	}
}
