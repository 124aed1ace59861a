// Package bloom provides a probabilistic pre-check for name lookups so that
// queries for names never imported skip the hash table probe.
package bloom

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/spaolacci/murmur3"

	"github.com/gisdb/gisdb/pkg/types"
)

// Fallback sizing for unusable constructor arguments.
const (
	defaultBits      = 1024
	defaultProbes    = 7
	defaultKeys      = 1000
	defaultTargetFPR = 0.01
)

// NameFilter answers "was this name key ever imported?" with no false
// negatives. Keys are compared byte for byte, like the name index.
type NameFilter struct {
	words  []uint64
	size   uint64 // bits, a multiple of 64
	probes uint64
	keys   uint64
}

// New returns a filter of at least numBits bits probed numHashes times per key.
func New(numBits, numHashes int) *NameFilter {
	if numBits <= 0 {
		numBits = defaultBits
	}
	if numHashes <= 0 {
		numHashes = defaultProbes
	}
	words := (numBits + 63) / 64
	return &NameFilter{
		words:  make([]uint64, words),
		size:   uint64(words) * 64,
		probes: uint64(numHashes),
	}
}

// NewWithEstimates sizes a filter for expectedItems name keys at the target
// false positive rate.
func NewWithEstimates(expectedItems int, targetFPR float64) *NameFilter {
	return New(OptimalParameters(expectedItems, targetFPR))
}

// OptimalParameters returns the bit count m = -n ln p / ln²2 and probe count
// k = (m/n) ln 2 for n keys at false positive rate p.
func OptimalParameters(expectedItems int, targetFPR float64) (numBits, numHashes int) {
	if expectedItems <= 0 {
		expectedItems = defaultKeys
	}
	if targetFPR <= 0 || targetFPR >= 1 {
		targetFPR = defaultTargetFPR
	}

	n := float64(expectedItems)
	m := -n * math.Log(targetFPR) / (math.Ln2 * math.Ln2)
	numBits = max(int(math.Ceil(m)), 64)
	numHashes = max(int(math.Ceil(m/n*math.Ln2)), 1)
	return numBits, numHashes
}

// probe calls fn with each bit position of key until fn returns false.
// Positions come from double hashing the two murmur3 halves.
func (f *NameFilter) probe(key types.NameKey, fn func(word int, mask uint64) bool) {
	h1, h2 := murmur3.Sum128([]byte(key))
	for i := uint64(0); i < f.probes; i++ {
		pos := (h1 + i*h2) % f.size
		if !fn(int(pos/64), 1<<(pos%64)) {
			return
		}
	}
}

// Add records an imported name key.
func (f *NameFilter) Add(key types.NameKey) {
	f.probe(key, func(word int, mask uint64) bool {
		f.words[word] |= mask
		return true
	})
	f.keys++
}

// MayContain reports false only when key was never added.
func (f *NameFilter) MayContain(key types.NameKey) bool {
	found := true
	f.probe(key, func(word int, mask uint64) bool {
		found = f.words[word]&mask != 0
		return found
	})
	return found
}

// NumBits returns the filter size in bits.
func (f *NameFilter) NumBits() int {
	return int(f.size)
}

// NumHashes returns the number of probes per key.
func (f *NameFilter) NumHashes() int {
	return int(f.probes)
}

// Count returns how many keys were added, duplicates included.
func (f *NameFilter) Count() uint64 {
	return f.keys
}

// FillRatio returns the fraction of bits set.
func (f *NameFilter) FillRatio() float64 {
	var set int
	for _, w := range f.words {
		set += bits.OnesCount64(w)
	}
	return float64(set) / float64(f.size)
}

// FalsePositiveRate estimates (1 - e^(-kn/m))^k for the keys added so far.
func (f *NameFilter) FalsePositiveRate() float64 {
	if f.keys == 0 {
		return 0
	}
	k := float64(f.probes)
	return math.Pow(1-math.Exp(-k*float64(f.keys)/float64(f.size)), k)
}

// Display writes the filter parameters and current fill.
func (f *NameFilter) Display(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Bits: %d\nHash functions: %d\nKeys added: %d\nFill ratio: %.4f\nEstimated false positive rate: %.6f\n",
		f.size, f.probes, f.keys, f.FillRatio(), f.FalsePositiveRate())
	return err
}
