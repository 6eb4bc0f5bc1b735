package pipeline

import (
	"crypto/rand"
	"sync"
	"time"
)

const base32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var ids struct {
	mu    sync.Mutex
	milli int64
	seq   uint16
}

// NewID returns a 26-character ULID: a 48-bit millisecond timestamp followed
// by 80 bits of randomness, Crockford Base32 encoded. A per-process counter
// in the first two random bytes keeps IDs minted in the same millisecond
// unique and ordered.
func NewID() string {
	ids.mu.Lock()
	now := time.Now().UnixMilli()
	if now == ids.milli {
		ids.seq++
	} else {
		ids.milli = now
		ids.seq = 0
	}
	seq := ids.seq
	ids.mu.Unlock()

	var raw [16]byte
	for i, shift := 0, 40; i < 6; i, shift = i+1, shift-8 {
		raw[i] = byte(now >> shift)
	}
	rand.Read(raw[6:])
	raw[6] = byte(seq >> 8)
	raw[7] = byte(seq)

	return encodeBase32(raw)
}

// encodeBase32 packs the 128 input bits into 26 characters, consumed as a
// bit stream from the high end. 26 characters hold 130 bits, so the first
// character carries only the top 3 bits.
func encodeBase32(raw [16]byte) string {
	out := make([]byte, 26)
	bit := -2
	for i := range out {
		var v uint
		for n := 0; n < 5; n++ {
			v <<= 1
			if bit >= 0 && raw[bit/8]&(1<<(7-bit%8)) != 0 {
				v |= 1
			}
			bit++
		}
		out[i] = base32Alphabet[v]
	}
	return string(out)
}
