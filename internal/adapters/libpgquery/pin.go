package libpgquery

import (
	"runtime"
	"unsafe"
)

// pinBuffer prepares a Go byte slice to cross the native boundary as a
// length+pointer pair. The returned release func must run after the native
// call returns; until then the backing array is pinned so the runtime cannot
// relocate it while the native library holds its address.
func pinBuffer(b []byte) (Protobuf, func()) {
	var pinner runtime.Pinner
	p := unsafe.Pointer(unsafe.SliceData(b))
	pinner.Pin(p)
	buf := Protobuf{
		Len:  uint64(len(b)),
		Data: uintptr(p),
	}
	return buf, func() {
		pinner.Unpin()
		runtime.KeepAlive(b)
	}
}
