// Package bufpool recycles the byte slices that hold incoming RPC records.
//
// Slices come from one of three size classes backed by sync.Pool. A request
// larger than the biggest class gets a plain allocation that Put ignores.
//
//	buf := bufpool.Get(n)
//	defer bufpool.Put(buf)
package bufpool

import "sync"

// Default size classes. LargeSize covers the biggest accepted record.
const (
	DefaultSmallSize  = 4 << 10
	DefaultMediumSize = 64 << 10
	DefaultLargeSize  = (1 << 20) + (1 << 18)
)

// Pool hands out slices from fixed size classes.
type Pool struct {
	classes [3]sizeClass
}

type sizeClass struct {
	size int
	pool sync.Pool
}

// Config sets the size classes. Zero fields take the defaults.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// NewPool creates a pool. Sizes must be increasing.
func NewPool(cfg Config) *Pool {
	sizes := [3]int{cfg.SmallSize, cfg.MediumSize, cfg.LargeSize}
	defaults := [3]int{DefaultSmallSize, DefaultMediumSize, DefaultLargeSize}

	p := &Pool{}
	for i := range p.classes {
		size := sizes[i]
		if size <= 0 {
			size = defaults[i]
		}
		p.classes[i].size = size
		p.classes[i].pool.New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

// Get returns a slice of length size. Its capacity is that of the smallest
// class that fits, or exactly size when no class does.
func (p *Pool) Get(size int) []byte {
	for i := range p.classes {
		c := &p.classes[i]
		if size <= c.size {
			buf := *c.pool.Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put recycles buf. Slices that did not come from Get are dropped. buf must
// not be used afterwards.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for i := range p.classes {
		c := &p.classes[i]
		if cap(buf) == c.size {
			full := buf[:c.size]
			c.pool.Put(&full)
			return
		}
	}
}

var global = NewPool(Config{})

// Get takes a slice from the shared pool.
func Get(size int) []byte { return global.Get(size) }

// Put returns a slice to the shared pool.
func Put(buf []byte) { global.Put(buf) }
