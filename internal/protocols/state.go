package protocols

import (
	"encoding/binary"
	"fmt"
)

// ParseStateArray decodes a protocol state/capability byte array into its
// little-endian 32-bit values. The wire format requires the length to be a
// multiple of 4; anything else is a protocol error and the caller must drop
// the event.
func ParseStateArray(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("state array length %d is not a multiple of 4", len(data))
	}
	values := make([]uint32, 0, len(data)/4)
	for i := 0; i < len(data); i += 4 {
		values = append(values, binary.LittleEndian.Uint32(data[i:i+4]))
	}
	return values, nil
}
