//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToUint32(0)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("valid max uint32", func(t *testing.T) {
		got, err := IntToUint32(math.MaxUint32)
		assert.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint32(-1)
		assert.Error(t, err)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToUint32(math.MaxUint32 + 1)
		assert.Error(t, err)
	})
}

func TestMulInt(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := MulInt(1<<16, 8)
		assert.NoError(t, err)
		assert.Equal(t, 1<<19, got)
	})

	t.Run("zero", func(t *testing.T) {
		got, err := MulInt(0, math.MaxInt)
		assert.NoError(t, err)
		assert.Equal(t, 0, got)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := MulInt(math.MaxInt, 2)
		assert.Error(t, err)

		_, err = MulInt(1<<40, 1<<40)
		assert.Error(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := MulInt(-1, 8)
		assert.Error(t, err)
	})
}

func TestAddInt(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := AddInt(40, 2)
		assert.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("max", func(t *testing.T) {
		got, err := AddInt(math.MaxInt-1, 1)
		assert.NoError(t, err)
		assert.Equal(t, math.MaxInt, got)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := AddInt(math.MaxInt-5, 8)
		assert.Error(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := AddInt(-1, 1)
		assert.Error(t, err)
	})
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		size, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 16, 16},
		{math.MaxInt - 7, 8, math.MaxInt - 7},
	}
	for _, tt := range tests {
		got, err := AlignUp(tt.size, tt.align)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, "AlignUp(%d, %d)", tt.size, tt.align)
	}

	_, err := AlignUp(math.MaxInt-5, 8)
	assert.Error(t, err)
}
