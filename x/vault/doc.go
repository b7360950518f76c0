/*
Package vault implements a custodial escrow for assets.

An asset owner can deposit an asset into the vault by paying a protocol
fee. Custody of the asset is transferred to the vault address and an
AssetLocker entry records the deposit. The depositor can later withdraw
the asset, or exchange it with another depositor in a single atomic
swap. Each operation either fully succeeds or leaves the state
untouched.

The protocol is configured through a single Configuration entity that
holds the configuration owner, the vault address and the lock fee. The
configuration is created once, either during the genesis or with an
explicit initialization message, and can be amended only by its owner.
*/
package vault
