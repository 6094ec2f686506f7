package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestIsLittleEndianMatchesNativeEndian(t *testing.T) {
	var i uint32 = 1
	b := (*[4]byte)(unsafe.Pointer(&i))[:]
	want := binary.LittleEndian.Uint32(b) == 1
	require.Equal(t, want, IsLittleEndian())
}
