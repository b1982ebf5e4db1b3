package capture

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuffer(w, h, format uint32) *Buffer {
	return &Buffer{Width: w, Height: h, Format: format, Modifier: ModifierLinear}
}

func TestCacheReuseExactShape(t *testing.T) {
	c := NewCache()
	allocations := 0

	request := func(id uint64, w, h, format uint32) *Buffer {
		if b, ok := c.Get(id, w, h, format); ok {
			return b
		}
		allocations++
		b := testBuffer(w, h, format)
		c.Put(id, b)
		return b
	}

	first := request(7, 640, 480, 0x34325258)
	second := request(7, 640, 480, 0x34325258)
	assert.Same(t, first, second, "identical request shape reuses the buffer")
	assert.Equal(t, 1, allocations)

	third := request(7, 800, 480, 0x34325258)
	assert.NotSame(t, first, third, "changed width reallocates")
	assert.Equal(t, 2, allocations)

	// the replaced buffer is gone from the cache
	_, ok := c.Get(7, 640, 480, 0x34325258)
	assert.False(t, ok)
}

func TestCacheOneBufferPerToplevel(t *testing.T) {
	c := NewCache()
	c.Put(1, testBuffer(100, 100, 1))
	c.Put(1, testBuffer(200, 200, 1))

	b, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, uint32(200), b.Width)

	c.Drop(1)
	_, ok = c.Lookup(1)
	assert.False(t, ok)
}

func TestCacheDropAbsentIsNoop(t *testing.T) {
	c := NewCache()
	c.Drop(99)
	_, ok := c.Lookup(99)
	assert.False(t, ok)
}

func buildTable(entries ...[2]uint64) []byte {
	data := make([]byte, 0, len(entries)*formatTableEntrySize)
	for _, e := range entries {
		row := make([]byte, formatTableEntrySize)
		binary.LittleEndian.PutUint32(row[0:4], uint32(e[0]))
		binary.LittleEndian.PutUint64(row[8:16], e[1])
		data = append(data, row...)
	}
	return data
}

func TestFeedbackBuilderTrancheFormats(t *testing.T) {
	b := NewFeedbackBuilder()
	b.table = buildTable(
		[2]uint64{0x34325258, ModifierLinear}, // XR24 linear
		[2]uint64{0x34325258, 0x0100000000000001},
		[2]uint64{0x34324241, ModifierLinear}, // AB24 linear
	)

	indices := make([]byte, 6)
	binary.LittleEndian.PutUint16(indices[0:2], 0)
	binary.LittleEndian.PutUint16(indices[2:4], 1)
	binary.LittleEndian.PutUint16(indices[4:6], 2)
	require.NoError(t, b.AddTrancheFormats(indices))

	assert.ElementsMatch(t, []uint64{ModifierLinear, 0x0100000000000001}, b.formats[0x34325258])
	assert.Equal(t, []uint64{ModifierLinear}, b.formats[0x34324241])

	// duplicate tranche entries do not duplicate modifiers
	require.NoError(t, b.AddTrancheFormats(indices[:2]))
	assert.Len(t, b.formats[0x34325258], 2)
}

func TestFeedbackBuilderRejectsBadPayloads(t *testing.T) {
	b := NewFeedbackBuilder()

	assert.Error(t, b.AddTrancheFormats([]byte{0x00}), "odd length")
	assert.Error(t, b.AddTrancheFormats([]byte{0x00, 0x00}), "indices before table")

	b.table = buildTable([2]uint64{1, 0})
	oob := make([]byte, 2)
	binary.LittleEndian.PutUint16(oob, 5)
	assert.Error(t, b.AddTrancheFormats(oob), "index out of range")

	assert.Error(t, b.SetMainDevice([]byte{1, 2, 3}), "short dev_t")

	_, err := b.Done()
	assert.Error(t, err, "done without main device")
}

func TestFeedbackSupports(t *testing.T) {
	f := &Feedback{Formats: map[uint32][]uint64{
		0x34325258: {ModifierLinear, 7},
	}}
	assert.True(t, f.Supports(0x34325258, ModifierLinear))
	assert.True(t, f.Supports(0x34325258, 7))
	assert.False(t, f.Supports(0x34325258, 8))
	assert.False(t, f.Supports(0x99999999, ModifierLinear))
}
