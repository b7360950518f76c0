package asset

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrNoAsset is returned when referencing an asset that is not
	// registered.
	ErrNoAsset = errors.Register(1610, "no such asset")

	// ErrNoCollection is returned when referencing a collection that is
	// not registered.
	ErrNoCollection = errors.Register(1611, "no such collection")
)
