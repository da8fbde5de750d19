// Package mempool recycles the per-scan buffers of contour extraction.
package mempool

import "sync"

// boolPools maps a size class (int) to a *sync.Pool of []bool.
var boolPools sync.Map

// sizeClass rounds n up to a multiple of 1024 so nearby grid sizes share
// buffers.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func boolPool(cls int) *sync.Pool {
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	p, _ := pAny.(*sync.Pool)
	return p
}

// GetBool returns a zeroed []bool of length n. Return it with PutBool.
func GetBool(n int) []bool {
	if n <= 0 {
		return nil
	}
	cls := sizeClass(n)
	p := boolPool(cls)
	if p == nil {
		return make([]bool, n)
	}

	buf, ok := p.Get().([]bool)
	if !ok || cap(buf) < cls {
		buf = make([]bool, cls)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// PutBool hands a buffer back. Nil and empty slices are ignored.
func PutBool(buf []bool) {
	if cap(buf) == 0 {
		return
	}
	// Buffers are pooled under the class their capacity fills completely.
	cls := cap(buf) / 1024 * 1024
	if cls == 0 {
		return
	}
	if p := boolPool(cls); p != nil {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck // slices are small headers
	}
}
