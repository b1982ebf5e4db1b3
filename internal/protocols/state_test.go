package protocols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStateArray(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []uint32
		wantErr bool
	}{
		{
			name: "empty array",
			data: []byte{},
			want: []uint32{},
		},
		{
			name: "single value little endian",
			data: []byte{0x02, 0x00, 0x00, 0x00},
			want: []uint32{2},
		},
		{
			name: "multiple values",
			data: []byte{0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00},
			want: []uint32{0, 3},
		},
		{
			name: "high byte decodes little endian",
			data: []byte{0x01, 0x00, 0x00, 0x80},
			want: []uint32{0x80000001},
		},
		{
			name:    "length not multiple of four",
			data:    []byte{0x01, 0x00, 0x00},
			wantErr: true,
		},
		{
			name:    "five bytes",
			data:    []byte{0x01, 0x00, 0x00, 0x00, 0x02},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStateArray(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
