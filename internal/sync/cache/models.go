package cache

import (
	"fmt"
	"strconv"

	"github.com/driftlabs/driftsync/internal/fsx"
	"github.com/driftlabs/driftsync/internal/sync/tree"
)

// Row is one tracked node as stored in the cache. RelPath is slash
// separated and relative to the sync root; the root itself is the row
// with an empty RelPath.
type Row struct {
	ConfigID string
	RelPath  string
	IsDir    bool
	Size     int64
	MTime    int64
	CRC      string
	Valid    bool
	FSID     fsx.ID
}

// Type returns the tracked entry type the row describes.
func (r Row) Type() tree.Type {
	if r.IsDir {
		return tree.TypeDir
	}
	return tree.TypeFile
}

// Fingerprint reconstructs the content fingerprint stored on the row.
func (r Row) Fingerprint() (tree.Fingerprint, error) {
	crc, err := DecodeCRC(r.CRC)
	if err != nil {
		return tree.Fingerprint{}, err
	}
	return tree.Fingerprint{
		Size:  r.Size,
		MTime: r.MTime,
		CRC:   crc,
		Valid: r.Valid,
	}, nil
}

// EncodeCRC renders the four CRC words as 32 hex characters.
func EncodeCRC(crc [4]uint32) string {
	return fmt.Sprintf("%08x%08x%08x%08x", crc[0], crc[1], crc[2], crc[3])
}

// DecodeCRC parses the hex form produced by EncodeCRC. The empty string
// decodes to a zero CRC so rows written without content hashes load.
func DecodeCRC(s string) ([4]uint32, error) {
	var crc [4]uint32
	if s == "" {
		return crc, nil
	}
	if len(s) != 32 {
		return crc, fmt.Errorf("crc text must be 32 hex characters, got %d", len(s))
	}
	for i := 0; i < 4; i++ {
		word, err := strconv.ParseUint(s[i*8:(i+1)*8], 16, 32)
		if err != nil {
			return [4]uint32{}, fmt.Errorf("crc word %d: %w", i, err)
		}
		crc[i] = uint32(word)
	}
	return crc, nil
}
