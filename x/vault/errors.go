package vault

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrInitialized is returned when creating a configuration that
	// already exists.
	ErrInitialized = errors.Register(1600, "already initialized")

	// ErrAlreadyLocked is returned when locking an asset that has an
	// outstanding locker entry.
	ErrAlreadyLocked = errors.Register(1601, "asset already locked")

	// ErrNoLocker is returned when the requested locker entry does not
	// exist.
	ErrNoLocker = errors.Register(1602, "no such locker")

	// ErrSelfSwap is returned when both sides of a swap belong to the
	// same depositor.
	ErrSelfSwap = errors.Register(1603, "cannot swap with yourself")

	// ErrInvalidFee is returned when the fee declared in a message does
	// not match the configured fee.
	ErrInvalidFee = errors.Register(1604, "invalid fee amount")
)
