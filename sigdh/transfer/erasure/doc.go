// Package erasure wraps Reed-Solomon coding for sigdh transfers.
//
// A payload is split into data shards and padded to a common shard size,
// then parity shards are added. Shards whose records fail authentication
// on the receiving side are treated as erasures: with d data and p parity
// shards, any p of them may be lost and the payload is still rebuilt.
package erasure
