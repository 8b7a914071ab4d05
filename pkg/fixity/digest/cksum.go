package digest

import (
	"encoding/binary"
	"hash"
)

// CksumSize is the size of a cksum checksum in bytes.
const CksumSize = 4

// cksumPoly is the CRC-32 generator polynomial used by POSIX cksum,
// processed most significant bit first.
const cksumPoly = 0x04C11DB7

var cksumTable = makeCksumTable()

func makeCksumTable() *[256]uint32 {
	var t [256]uint32
	for i := range t {
		c := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ cksumPoly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return &t
}

// cksum implements hash.Hash32 for the checksum printed by the POSIX
// cksum utility.
type cksum struct {
	crc uint32
	n   uint64
}

// NewCksum returns a hash.Hash32 computing the POSIX cksum CRC.
// Sum appends the value big-endian, so the empty input renders as FFFFFFFF.
func NewCksum() hash.Hash32 {
	return &cksum{}
}

func (d *cksum) Size() int      { return CksumSize }
func (d *cksum) BlockSize() int { return 1 }

func (d *cksum) Reset() {
	d.crc = 0
	d.n = 0
}

func (d *cksum) Write(p []byte) (int, error) {
	d.crc = updateCksum(d.crc, p)
	d.n += uint64(len(p))
	return len(p), nil
}

// Sum32 folds the message length into the CRC and complements it.
// The running state is left untouched so writes may continue afterwards.
func (d *cksum) Sum32() uint32 {
	crc := d.crc
	for n := d.n; n != 0; n >>= 8 {
		crc = crc<<8 ^ cksumTable[byte(crc>>24)^byte(n)]
	}
	return ^crc
}

func (d *cksum) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, d.Sum32())
}

func updateCksum(crc uint32, p []byte) uint32 {
	for _, v := range p {
		crc = crc<<8 ^ cksumTable[byte(crc>>24)^v]
	}
	return crc
}

var _ hash.Hash32 = (*cksum)(nil)
