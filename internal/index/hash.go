package index

import "unicode/utf16"

// hashMask keeps the low 28 bits of the rolling hash.
const hashMask = 0x0FFFFFFF

// Hash is Knuth's rolling string hash. It runs over UTF-16 code units with
// signed 32-bit arithmetic, seeded with the key length in code units, so
// slot layout is stable for any key including non-ASCII names.
func Hash(key string) uint32 {
	units := utf16.Encode([]rune(key))
	h := int32(len(units))
	for _, c := range units {
		h = (h << 5) ^ (h >> 27) ^ int32(c)
	}
	return uint32(h & hashMask)
}
