// Package transfer moves a whole payload over an established channel.
//
// The payload is LZ4-compressed when that makes it smaller, split into
// Reed-Solomon shards and sent as one header record followed by one sealed
// record per shard. Payloads too big for a single set of shards are cut
// into groups encoded one after another. A shard whose record fails
// authentication is dropped and counted as an erasure; the receiver
// rebuilds each group as long as no more than ParityShards of its shards
// are lost, then checks the SHA3-256 digest of the whole payload.
package transfer
