package objects

// IdentifierPool hands out integer ids, reusing released ids oldest first
// before advancing its counter.
type IdentifierPool struct {
	next   int
	free   []int
	queued map[int]struct{}
}

// NewIdentifierPool returns a pool whose first id is 0.
func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{queued: make(map[int]struct{})}
}

// Next returns the oldest released id, or the counter when none is free.
// The counter only advances in the latter case.
func (p *IdentifierPool) Next() int {
	if len(p.free) > 0 {
		id := p.free[0]
		p.free = p.free[1:]
		delete(p.queued, id)
		return id
	}
	id := p.next
	p.next++
	return id
}

// Release makes id reusable. Ids the counter has not issued yet and ids
// already queued are ignored.
func (p *IdentifierPool) Release(id int) {
	if id < 0 || id >= p.next {
		return
	}
	if _, ok := p.queued[id]; ok {
		return
	}
	p.queued[id] = struct{}{}
	p.free = append(p.free, id)
}

// Counter returns the next id the counter would issue.
func (p *IdentifierPool) Counter() int { return p.next }

// Free returns the released ids in reuse order.
func (p *IdentifierPool) Free() []int { return append([]int(nil), p.free...) }
