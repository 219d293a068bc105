package crypto

import "runtime"

// Wipe overwrites b with zeros. It is best effort: the Go runtime may have
// copied the data elsewhere.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
