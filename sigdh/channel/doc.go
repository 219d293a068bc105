// Package channel protects application traffic with the session keys.
//
// Each record is encrypted with AES-128-CTR under the cipher key and then
// authenticated with HMAC-SHA3-256 under the MAC key:
//
//	counter (4 bytes, big endian) || ciphertext || tag (32 bytes)
//	tag = HMAC(macKey, type || counter || ciphertext)
//
// type is the frame type the record travels in. It is not part of the
// record, but a DATA record will not open as a CLOSE or the other way round.
//
// The CTR initial block is nonce (8) || counter (4) || block index (4).
// Both parties share one key set, so the top bit of the counter names the
// sending role and each direction owns a disjoint half of the counter
// space. A counter is never reused; once a direction has sent 2^31 records
// the channel refuses to seal more.
package channel
