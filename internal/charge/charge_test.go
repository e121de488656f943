package charge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveMaximum(t *testing.T) {
	for _, max := range []int{0, -1} {
		_, err := New(max)
		assert.Error(t, err)
	}
	r, err := New(10)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Remaining())
	assert.Equal(t, 10, r.Max())
}

func TestConsumeOne_FloorsAtZero(t *testing.T) {
	r, err := New(2)
	require.NoError(t, err)

	r.ConsumeOne()
	r.ConsumeOne()
	assert.True(t, r.Exhausted())

	r.ConsumeOne()
	assert.Equal(t, 0, r.Remaining())
}

func TestNeedsReload(t *testing.T) {
	tests := []struct {
		name      string
		maximum   int
		remaining int
		want      bool
	}{
		{"full", 10, 10, false},
		{"exactly threshold", 10, 3, false},
		{"just under threshold", 10, 2, true},
		{"empty", 10, 0, true},
		{"small maximum", 3, 1, false},
		{"odd ratio", 7, 3, false},
		{"odd ratio under", 7, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.maximum)
			require.NoError(t, err)
			r.Restore(tt.remaining)
			assert.Equal(t, tt.want, r.NeedsReload())
		})
	}
}

func TestReload(t *testing.T) {
	r, err := New(10)
	require.NoError(t, err)
	r.Restore(0)
	require.True(t, r.NeedsReload())

	r.Reload()

	assert.Equal(t, 10, r.Remaining())
	assert.False(t, r.NeedsReload())
	assert.False(t, r.Exhausted())
}

func TestRestore_Clamps(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)

	r.Restore(-3)
	assert.Equal(t, 0, r.Remaining())

	r.Restore(99)
	assert.Equal(t, 5, r.Remaining())
}

func TestTicker_Due(t *testing.T) {
	tk := NewTicker(100)

	assert.Equal(t, 0, tk.Due(0, 0, 99))
	assert.Equal(t, 1, tk.Due(0, 0, 100))
	assert.Equal(t, 1, tk.Due(0, 99, 100))
	assert.Equal(t, 0, tk.Due(0, 100, 100))
	assert.Equal(t, 3, tk.Due(0, 0, 350))
	assert.Equal(t, 1, tk.Due(30, 0, 70))
	assert.Equal(t, 0, tk.Due(0, 50, 10))
}

func TestTicker_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewTicker(0).Interval)
	assert.Equal(t, 25, NewTicker(25).Interval)
}

func TestTicker_AdvanceDrainsAndStopsAtZero(t *testing.T) {
	r, err := New(3)
	require.NoError(t, err)
	tk := NewTicker(100)

	n := tk.Advance(r, 0, 0, 200)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, r.Remaining())

	tk.Advance(r, 0, 200, 1000)
	assert.Equal(t, 0, r.Remaining())
	assert.True(t, r.Exhausted())
}

func TestTicker_AdvanceLargeJump(t *testing.T) {
	r, err := New(10)
	require.NoError(t, err)
	tk := NewTicker(100)

	done := make(chan int, 1)
	go func() { done <- tk.Advance(r, 0, 0, 10_000_000_000_000) }()

	select {
	case n := <-done:
		assert.Equal(t, 100_000_000_000, n)
	case <-time.After(time.Second):
		t.Fatal("advance over a large tick gap did not return")
	}
	assert.Equal(t, 0, r.Remaining())
}

func TestResource_ConsumeN(t *testing.T) {
	r, err := New(5)
	require.NoError(t, err)

	r.ConsumeN(0)
	assert.Equal(t, 5, r.Remaining())
	r.ConsumeN(-3)
	assert.Equal(t, 5, r.Remaining())
	r.ConsumeN(2)
	assert.Equal(t, 3, r.Remaining())
	r.ConsumeN(50)
	assert.Equal(t, 0, r.Remaining())
}
