package tree

import (
	"hash/crc32"
	"io"

	"github.com/driftlabs/driftsync/internal/fsx"
)

const (
	// crcFullThreshold is the largest file fingerprinted from its full
	// contents; larger files are sampled.
	crcFullThreshold = 16 * 1024
	crcSampleSize    = 4 * 1024
)

// Fingerprint summarizes a file's content identity: size, modification
// time and four CRC words over (a sample of) the data. Directory
// fingerprints carry size zero and a zero CRC. Two fingerprints compare
// equal with == when they describe the same content.
type Fingerprint struct {
	Size  int64
	MTime int64
	CRC   [4]uint32
	Valid bool
}

// Equal reports whether both fingerprints are valid and identical.
func (fp Fingerprint) Equal(other Fingerprint) bool {
	return fp.Valid && other.Valid && fp == other
}

// DirFingerprint returns the fingerprint recorded for a directory.
func DirFingerprint(mtime int64) Fingerprint {
	return Fingerprint{MTime: mtime, Valid: true}
}

// FileFingerprint computes a file's fingerprint from an open handle.
// Files up to 16 bytes pack their raw bytes into the CRC words; files up
// to crcFullThreshold hash four contiguous quarters; larger files hash
// four evenly spaced samples so the cost stays flat regardless of size.
func FileFingerprint(f fsx.File) (Fingerprint, error) {
	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, err
	}
	fp := Fingerprint{Size: info.Size, MTime: info.MTime}

	switch {
	case info.Size == 0:
		// Zero CRC stands in for empty content.
	case info.Size <= 16:
		buf := make([]byte, info.Size)
		if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
			return Fingerprint{}, err
		}
		for i, b := range buf {
			fp.CRC[i/4] |= uint32(b) << (8 * uint(i%4))
		}
	case info.Size <= crcFullThreshold:
		quarter := info.Size / 4
		buf := make([]byte, info.Size)
		if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
			return Fingerprint{}, err
		}
		for i := 0; i < 4; i++ {
			start := int64(i) * quarter
			end := start + quarter
			if i == 3 {
				end = info.Size
			}
			fp.CRC[i] = crc32.ChecksumIEEE(buf[start:end])
		}
	default:
		stride := (info.Size - crcSampleSize) / 3
		buf := make([]byte, crcSampleSize)
		for i := 0; i < 4; i++ {
			off := int64(i) * stride
			if _, err := f.ReadAt(buf, off); err != nil && err != io.EOF {
				return Fingerprint{}, err
			}
			fp.CRC[i] = crc32.ChecksumIEEE(buf)
		}
	}

	fp.Valid = true
	return fp, nil
}
