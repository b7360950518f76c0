package asset

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreateCollectionMsg{}, migration.NoModification)
	migration.MustRegister(1, &IssueMsg{}, migration.NoModification)
	migration.MustRegister(1, &TransferMsg{}, migration.NoModification)
}

const (
	pathCreateCollection = "asset/create_collection"
	pathIssue            = "asset/issue"
	pathTransfer         = "asset/transfer"

	maxIDSize   int = 64
	maxNameSize int = 64
	maxURISize  int = 256
)

var _ weave.Msg = (*CreateCollectionMsg)(nil)
var _ weave.Msg = (*IssueMsg)(nil)
var _ weave.Msg = (*TransferMsg)(nil)

// Path fulfills weave.Msg interface to allow routing
func (CreateCollectionMsg) Path() string {
	return pathCreateCollection
}

// Path fulfills weave.Msg interface to allow routing
func (IssueMsg) Path() string {
	return pathIssue
}

// Path fulfills weave.Msg interface to allow routing
func (TransferMsg) Path() string {
	return pathTransfer
}

// Validate makes sure that this is sensible.
func (m *CreateCollectionMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateID(m.ID); err != nil {
		return errors.Wrap(err, "id")
	}
	if err := validateName(m.Name); err != nil {
		return errors.Wrap(err, "name")
	}
	return nil
}

// Validate makes sure that this is sensible.
func (m *IssueMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateID(m.ID); err != nil {
		return errors.Wrap(err, "id")
	}
	if len(m.Collection) != 0 {
		if err := validateID(m.Collection); err != nil {
			return errors.Wrap(err, "collection")
		}
	}
	// Owner is optional and defaults to the first signer.
	if m.Owner != nil {
		if err := m.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if err := validateName(m.Name); err != nil {
		return errors.Wrap(err, "name")
	}
	if len(m.URI) > maxURISize {
		return errors.Wrapf(errors.ErrInput, "uri longer than %d characters", maxURISize)
	}
	return nil
}

// Validate makes sure that this is sensible.
func (m *TransferMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validateID(m.AssetID); err != nil {
		return errors.Wrap(err, "asset id")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return nil
}

func validateID(id []byte) error {
	switch n := len(id); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "id is required")
	case n > maxIDSize:
		return errors.Wrapf(errors.ErrInput, "id longer than %d bytes", maxIDSize)
	}
	return nil
}

func validateName(name string) error {
	switch n := len(name); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "name is required")
	case n > maxNameSize:
		return errors.Wrapf(errors.ErrInput, "name longer than %d characters", maxNameSize)
	}
	return nil
}
