// Package endian reports the byte order of the host CPU.
//
// The VRT wire format is always 32-bit big-endian, and the codec never
// byte-swaps anything itself: it reads and writes word values directly.
// This probe exists only so a caller who serializes those words onto a
// byte-oriented medium (a file, a socket) knows whether it must swap each
// word first. The codec package never calls it.
package endian

import "unsafe"

// IsLittleEndian reports whether the host stores multi-byte integers
// least-significant-byte first.
func IsLittleEndian() bool {
	var i uint16 = 0x0102
	return *(*byte)(unsafe.Pointer(&i)) == 0x02
}
