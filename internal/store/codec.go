package store

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Snapshot payload framing: 8-byte magic + 4-byte LE uint32 uncompressed
// size + one lz4 block. Same shape as Mozilla's mozlz4 session files, with
// our own magic.
var snapMagic = []byte("twSnap1\x00")

const headerSize = 12 // 8 magic + 4 size

// compress frames and block-compresses a payload.
func compress(src []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(src))
	out := make([]byte, headerSize+bound)
	copy(out, snapMagic)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(src)))

	if len(src) == 0 {
		return out[:headerSize], nil
	}

	var c lz4.Compressor
	n, err := c.CompressBlock(src, out[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return out[:headerSize+n], nil
}

// decompress validates the frame and inflates the block.
func decompress(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("snapshot payload too short (%d bytes)", len(data))
	}
	for i := range snapMagic {
		if data[i] != snapMagic[i] {
			return nil, fmt.Errorf("invalid snapshot payload magic")
		}
	}

	size := binary.LittleEndian.Uint32(data[8:12])
	if size == 0 {
		return nil, nil
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return dst[:n], nil
}
