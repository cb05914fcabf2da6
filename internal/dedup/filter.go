package dedup

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"
)

// Defaults size the filter for the expected stream: ~24 bits per element
// at this false-positive rate, so 10 million deposit/withdrawal txs use
// roughly 30 MiB and produce ~100 false positives.
const (
	DefaultExpectedTxs = 10_000_000
	DefaultFPRate      = 0.00001
)

// Verdict is the outcome of observing a TxID.
type Verdict int

const (
	// Fresh: the TxID has not been seen before.
	Fresh Verdict = iota

	// ProbablySeen: the TxID was observed earlier, or is a filter false
	// positive. Either way the event is dropped; the false-positive rate
	// is an accepted, documented operational loss.
	ProbablySeen
)

func (v Verdict) String() string {
	if v == Fresh {
		return "fresh"
	}
	return "probably_seen"
}

// TxFilter is approximate set membership over observed transaction ids.
// Each worker owns one; witnesses are never removed. Not thread-safe.
type TxFilter struct {
	bloom *bloom.BloomFilter
}

// NewTxFilter sizes a filter for expectedTxs entries at the given
// false-positive rate.
func NewTxFilter(expectedTxs uint, fpRate float64) *TxFilter {
	return &TxFilter{bloom: bloom.NewWithEstimates(expectedTxs, fpRate)}
}

// ObserveAndCheck records the TxID and reports whether it was already
// present.
func (f *TxFilter) ObserveAndCheck(txID uint32) Verdict {
	var key [4]byte
	binary.LittleEndian.PutUint32(key[:], txID)
	if f.bloom.TestOrAdd(key[:]) {
		return ProbablySeen
	}
	return Fresh
}
