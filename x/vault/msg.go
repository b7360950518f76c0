package vault

import (
	"bytes"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	// Migration needs to be registered for every message introduced in the codec.
	// This is the convention to message versioning.
	migration.MustRegister(1, &InitMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
	migration.MustRegister(1, &LockMsg{}, migration.NoModification)
	migration.MustRegister(1, &UnlockMsg{}, migration.NoModification)
	migration.MustRegister(1, &SwapMsg{}, migration.NoModification)
}

const (
	pathInit   = "vault/init"
	pathUpdate = "vault/update_configuration"
	pathLock   = "vault/lock"
	pathUnlock = "vault/unlock"
	pathSwap   = "vault/swap"

	maxAssetIDSize int = 64
)

var _ weave.Msg = (*InitMsg)(nil)
var _ weave.Msg = (*UpdateConfigurationMsg)(nil)
var _ weave.Msg = (*LockMsg)(nil)
var _ weave.Msg = (*UnlockMsg)(nil)
var _ weave.Msg = (*SwapMsg)(nil)

// ROUTING, Path method fulfills weave.Msg interface to allow routing

func (InitMsg) Path() string {
	return pathInit
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdate
}

func (LockMsg) Path() string {
	return pathLock
}

func (UnlockMsg) Path() string {
	return pathUnlock
}

func (SwapMsg) Path() string {
	return pathSwap
}

// VALIDATION, Validate method makes sure basic rules are enforced upon input data and fulfills weave.Msg interface

func (m *InitMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Fee.Validate(); err != nil {
		return errors.Wrap(err, "fee")
	}
	if !m.Fee.IsNonNegative() {
		return errors.Wrap(errors.ErrInput, "fee cannot be negative")
	}
	return nil
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

func (m *LockMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateAssetID(m.AssetID); err != nil {
		return err
	}
	if err := m.Fee.Validate(); err != nil {
		return errors.Wrap(err, "fee")
	}
	if !m.Fee.IsNonNegative() {
		return errors.Wrap(errors.ErrInput, "fee cannot be negative")
	}
	return nil
}

func (m *UnlockMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return validateAssetID(m.AssetID)
}

func (m *SwapMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateAssetID(m.OfferedAssetID); err != nil {
		return errors.Wrap(err, "offered asset")
	}
	if err := validateAssetID(m.CounterAssetID); err != nil {
		return errors.Wrap(err, "counter asset")
	}
	if bytes.Equal(m.OfferedAssetID, m.CounterAssetID) {
		return errors.Wrap(errors.ErrInput, "offered and counter asset are the same")
	}
	return nil
}

func validateAssetID(id []byte) error {
	switch n := len(id); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "asset id")
	case n > maxAssetIDSize:
		return errors.Wrapf(errors.ErrInput, "asset id must be at most %d bytes", maxAssetIDSize)
	}
	return nil
}
