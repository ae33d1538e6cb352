// Package message builds, encodes, finalizes and verifies Farcaster hub messages.
//
// The flow is one-directional:
//
//	data, err := message.MakeCastAdd(body, message.Options{Fid: 42, Network: message.NetworkMainnet})
//	msg, err := message.Finalize(data, signer)
//
// Builders are pure: they validate the payload and return unsigned MessageData.
// Finalize encodes the data canonically, hashes it with BLAKE3 truncated to
// 20 bytes, signs the hash with Ed25519 and returns an immutable *Message.
//
// Only the subset of the hub schema used by this module is modeled: cast
// add/remove, reaction add/remove, link add/remove, user data and
// verification bodies. Unknown fields in decoded messages are skipped, but the
// original data bytes are retained so hashes remain verifiable.
package message
