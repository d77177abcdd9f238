package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierPoolFIFO(t *testing.T) {
	t.Parallel()

	p := NewIdentifierPool()
	for want := 0; want < 4; want++ {
		assert.Equal(t, want, p.Next())
	}

	p.Release(2)
	p.Release(0)
	p.Release(2) // already queued
	p.Release(9) // never issued
	p.Release(4) // equal to the counter
	assert.Equal(t, []int{2, 0}, p.Free())
	assert.Equal(t, 4, p.Counter())

	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 0, p.Next())
	assert.Equal(t, 4, p.Counter(), "reuse must not advance the counter")
	assert.Equal(t, 4, p.Next())
	assert.Equal(t, 5, p.Counter())
}

func TestIdentifierPoolReleaseAfterReuse(t *testing.T) {
	t.Parallel()

	p := NewIdentifierPool()
	a := p.Next()
	p.Release(a)
	assert.Equal(t, a, p.Next())
	p.Release(a)
	assert.Equal(t, []int{a}, p.Free(), "an id may be released again once reissued")
	p.Release(-1)
	assert.Equal(t, []int{a}, p.Free())
}
