/*

Package asset implements a registry of non fungible assets grouped into
collections.

Every asset is identified by a unique ID and has exactly one custody owner.
Assets are created (minted) by an issuer and can be moved between owners. The
custody transfer is an all or nothing operation, there is no partial transfer
state.

Other extensions build on top of this package by consuming the Controller
interface. For example x/vault takes temporary custody of an asset by
transferring it to its own address.

*/
package asset
