package asset_test

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/stretchr/testify/assert"

	"github.com/nftvault/vaultd/x/asset"
)

func TestCreateCollectionMsgValidate(t *testing.T) {
	cases := map[string]struct {
		msg     *asset.CreateCollectionMsg
		wantErr *errors.Error
	}{
		"valid message": {
			msg: &asset.CreateCollectionMsg{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       []byte("art"),
				Name:     "Art collection",
			},
		},
		"missing metadata": {
			msg: &asset.CreateCollectionMsg{
				ID:   []byte("art"),
				Name: "Art collection",
			},
			wantErr: errors.ErrMetadata,
		},
		"missing id": {
			msg: &asset.CreateCollectionMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Name:     "Art collection",
			},
			wantErr: errors.ErrEmpty,
		},
		"missing name": {
			msg: &asset.CreateCollectionMsg{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       []byte("art"),
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			}
		})
	}
}

func TestIssueMsgValidate(t *testing.T) {
	owner := weavetest.NewCondition().Address()

	cases := map[string]struct {
		msg     *asset.IssueMsg
		wantErr *errors.Error
	}{
		"valid message": {
			msg: &asset.IssueMsg{
				Metadata:   &weave.Metadata{Schema: 1},
				ID:         []byte("asset-1"),
				Owner:      owner,
				Collection: []byte("art"),
				Name:       "Sunrise",
				URI:        "https://example.com/sunrise.json",
			},
		},
		"owner and collection are optional": {
			msg: &asset.IssueMsg{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       []byte("asset-1"),
				Name:     "Sunrise",
			},
		},
		"missing id": {
			msg: &asset.IssueMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Name:     "Sunrise",
			},
			wantErr: errors.ErrEmpty,
		},
		"id too long": {
			msg: &asset.IssueMsg{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       make([]byte, 65),
				Name:     "Sunrise",
			},
			wantErr: errors.ErrInput,
		},
		"missing name": {
			msg: &asset.IssueMsg{
				Metadata: &weave.Metadata{Schema: 1},
				ID:       []byte("asset-1"),
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			}
		})
	}
}

func TestTransferMsgValidate(t *testing.T) {
	dst := weavetest.NewCondition().Address()

	cases := map[string]struct {
		msg     *asset.TransferMsg
		wantErr *errors.Error
	}{
		"valid message": {
			msg: &asset.TransferMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				AssetID:     []byte("asset-1"),
				Destination: dst,
			},
		},
		"missing asset id": {
			msg: &asset.TransferMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				Destination: dst,
			},
			wantErr: errors.ErrEmpty,
		},
		"missing destination": {
			msg: &asset.TransferMsg{
				Metadata: &weave.Metadata{Schema: 1},
				AssetID:  []byte("asset-1"),
			},
			wantErr: errors.ErrEmpty,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			}
		})
	}
}
