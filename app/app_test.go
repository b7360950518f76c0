package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	"github.com/iov-one/weave/x/validators"

	"github.com/nftvault/vaultd/x/asset"
	"github.com/nftvault/vaultd/x/vault"
)

type account struct {
	pk    *crypto.PrivateKey
	nonce int64
}

func (a *account) address() weave.Address {
	return a.pk.PublicKey().Address()
}

// newTestApp returns an initialized application with a genesis that funds
// all given accounts, registers one asset per account and configures the
// vault with a 1 VLT lock fee owned by the first account.
func newTestApp(t *testing.T, chainID string, accounts []*account) app.BaseApp {
	t.Helper()

	myApp, err := Application("vaultd", Stack(coin.Coin{}), TxDecoder, "", true)
	require.NoError(t, err)
	myApp.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&validators.Initializer{},
		&asset.Initializer{},
		&vault.Initializer{},
	))

	cashAccounts := ""
	assets := ""
	for i, a := range accounts {
		if i > 0 {
			cashAccounts += ","
			assets += ","
		}
		cashAccounts += fmt.Sprintf(`{
			"address": "%s",
			"coins": [{"whole": 50000, "ticker": "VLT"}]
		}`, a.address())
		assets += fmt.Sprintf(`{
			"id": "asset-%d",
			"owner": "%s",
			"name": "Test asset %d"
		}`, i+1, a.address(), i+1)
	}

	appState := fmt.Sprintf(`{
		"cash": [%s],
		"asset": {"assets": [%s]},
		"conf": {
			"cash": {
				"collector_address": "3b11c732b8fc1f09beb34031302fe2ab347c5c14",
				"minimal_fee": {"whole": 0}
			},
			"vault": {
				"metadata": {"schema": 1},
				"owner": "%s",
				"vault": "%s",
				"fee": {"whole": 1, "ticker": "VLT"}
			},
			"migration": {"admin": "%s"}
		},
		"initialize_schema": [
			{"pkg": "cash", "ver": 1},
			{"pkg": "sigs", "ver": 1},
			{"pkg": "validators", "ver": 1},
			{"pkg": "utils", "ver": 1},
			{"pkg": "asset", "ver": 1},
			{"pkg": "vault", "ver": 1}
		]
	}`, cashAccounts, assets, accounts[0].address(), vault.VaultAddress(), accounts[0].address())

	myApp.InitChain(abci.RequestInitChain{
		AppStateBytes: []byte(appState),
		ChainId:       chainID,
	})
	commitBlock(t, myApp, 1, chainID)
	return myApp
}

// commitBlock commits an empty block at height h and returns the new hash.
func commitBlock(t *testing.T, myApp app.BaseApp, h int64, chainID string) []byte {
	t.Helper()
	header := abci.Header{Height: h, ChainID: chainID, Time: time.Now()}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	myApp.EndBlock(abci.RequestEndBlock{})
	cres := myApp.Commit()
	assert.NotEmpty(t, cres.Data)
	return cres.Data
}

// deliverTx signs and executes the transaction within a new block.
func deliverTx(t *testing.T, myApp app.BaseApp, chainID string, h int64, signer *account, tx *Tx) abci.ResponseDeliverTx {
	t.Helper()

	sig, err := sigs.SignTx(signer.pk, tx, chainID, signer.nonce)
	require.NoError(t, err)
	signer.nonce++
	tx.Signatures = []*sigs.StdSignature{sig}
	txBytes, err := tx.Marshal()
	require.NoError(t, err)

	header := abci.Header{Height: h, ChainID: chainID, Time: time.Now()}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	chres := myApp.CheckTx(txBytes)
	require.Equal(t, uint32(0), chres.Code, chres.Log)
	dres := myApp.DeliverTx(txBytes)
	require.Equal(t, uint32(0), dres.Code, dres.Log)
	myApp.EndBlock(abci.RequestEndBlock{})
	myApp.Commit()
	return dres
}

// queryLocker loads a locker entry through the query interface.
func queryLocker(t *testing.T, myApp app.BaseApp, assetID []byte, owner weave.Address) (*vault.AssetLocker, bool) {
	t.Helper()

	key := append(append([]byte{}, assetID...), owner...)
	qres := myApp.Query(abci.RequestQuery{Path: "/lockers", Data: key})
	require.Equal(t, uint32(0), qres.Code, "%#v", qres)
	if len(qres.Value) == 0 {
		return nil, false
	}
	var locker vault.AssetLocker
	require.NoError(t, app.UnmarshalOneResult(qres.Value, &locker))
	return &locker, true
}

// queryAssetOwner loads the current custody holder of an asset.
func queryAssetOwner(t *testing.T, myApp app.BaseApp, assetID []byte) weave.Address {
	t.Helper()

	qres := myApp.Query(abci.RequestQuery{Path: "/assets", Data: assetID})
	require.Equal(t, uint32(0), qres.Code, "%#v", qres)
	require.NotEmpty(t, qres.Value)
	var a asset.Asset
	require.NoError(t, app.UnmarshalOneResult(qres.Value, &a))
	return a.Owner
}

func TestSendTx(t *testing.T) {
	chainID := "test-net-22"
	alice := &account{pk: crypto.GenPrivKeyEd25519()}
	myApp := newTestApp(t, chainID, []*account{alice})

	rcpt := crypto.GenPrivKeyEd25519().PublicKey().Address()
	amount := coin.NewCoin(2000, 0, "VLT")
	tx := &Tx{
		Sum: &Tx_CashSendMsg{&cash.SendMsg{
			Metadata:    &weave.Metadata{Schema: 1},
			Source:      alice.address(),
			Destination: rcpt,
			Amount:      &amount,
			Memo:        "Have a great trip!",
		}},
	}
	deliverTx(t, myApp, chainID, 2, alice, tx)

	var acct cash.Set
	key := cash.NewBucket().DBKey(rcpt)
	qres := myApp.Query(abci.RequestQuery{Path: "/", Data: key})
	require.Equal(t, uint32(0), qres.Code, "%#v", qres)
	require.NoError(t, app.UnmarshalOneResult(qres.Value, &acct))
	require.Equal(t, 1, len(acct.Coins))
	assert.Equal(t, int64(2000), acct.Coins[0].Whole)
}

func TestLockAndUnlock(t *testing.T) {
	chainID := "test-net-22"
	alice := &account{pk: crypto.GenPrivKeyEd25519()}
	myApp := newTestApp(t, chainID, []*account{alice})

	assetID := []byte("asset-1")
	lockTx := &Tx{
		Sum: &Tx_VaultLockMsg{&vault.LockMsg{
			Metadata: &weave.Metadata{Schema: 1},
			AssetID:  assetID,
			Fee:      coin.NewCoin(1, 0, "VLT"),
		}},
	}
	deliverTx(t, myApp, chainID, 2, alice, lockTx)

	locker, ok := queryLocker(t, myApp, assetID, alice.address())
	require.True(t, ok, "locker entry must exist")
	assert.Equal(t, alice.address(), locker.Owner)
	assert.Equal(t, assetID, locker.AssetID)

	unlockTx := &Tx{
		Sum: &Tx_VaultUnlockMsg{&vault.UnlockMsg{
			Metadata: &weave.Metadata{Schema: 1},
			AssetID:  assetID,
		}},
	}
	deliverTx(t, myApp, chainID, 3, alice, unlockTx)

	_, ok = queryLocker(t, myApp, assetID, alice.address())
	assert.False(t, ok, "locker entry must be removed")
}

func TestLockAndSwap(t *testing.T) {
	chainID := "test-net-22"
	alice := &account{pk: crypto.GenPrivKeyEd25519()}
	bob := &account{pk: crypto.GenPrivKeyEd25519()}
	myApp := newTestApp(t, chainID, []*account{alice, bob})

	aliceAsset := []byte("asset-1")
	bobAsset := []byte("asset-2")

	deliverTx(t, myApp, chainID, 2, alice, &Tx{
		Sum: &Tx_VaultLockMsg{&vault.LockMsg{
			Metadata: &weave.Metadata{Schema: 1},
			AssetID:  aliceAsset,
			Fee:      coin.NewCoin(1, 0, "VLT"),
		}},
	})
	deliverTx(t, myApp, chainID, 3, bob, &Tx{
		Sum: &Tx_VaultLockMsg{&vault.LockMsg{
			Metadata: &weave.Metadata{Schema: 1},
			AssetID:  bobAsset,
			Fee:      coin.NewCoin(1, 0, "VLT"),
		}},
	})
	deliverTx(t, myApp, chainID, 4, alice, &Tx{
		Sum: &Tx_VaultSwapMsg{&vault.SwapMsg{
			Metadata:       &weave.Metadata{Schema: 1},
			OfferedAssetID: aliceAsset,
			CounterAssetID: bobAsset,
		}},
	})

	// Both lockers are consumed by the swap.
	_, ok := queryLocker(t, myApp, aliceAsset, alice.address())
	assert.False(t, ok, "offered locker must be removed")
	_, ok = queryLocker(t, myApp, bobAsset, bob.address())
	assert.False(t, ok, "counter locker must be removed")

	// And each party received custody of the asset deposited by the other.
	assert.Equal(t, bob.address(), queryAssetOwner(t, myApp, aliceAsset))
	assert.Equal(t, alice.address(), queryAssetOwner(t, myApp, bobAsset))
}
