// Package audio holds the PCM primitives used by the capture pipeline.
// Samples are signed 16-bit little-endian mono.
package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// Source is anything the merge node can drain PCM bytes from
type Source interface {
	ReadAvailable() []byte
}

// MergeNode mixes several sources into one stream
type MergeNode struct {
	mu      sync.Mutex
	sources []Source
	pending [][]byte
}

// NewMergeNode creates a merge node over the given sources
func NewMergeNode(sources ...Source) *MergeNode {
	return &MergeNode{
		sources: sources,
		pending: make([][]byte, len(sources)),
	}
}

// Drain pulls whatever each source has buffered and returns the mixed PCM.
// Shorter inputs are padded with silence, sums are clipped to int16.
func (m *MergeNode) Drain() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	inputs := make([][]byte, len(m.sources))
	longest := 0
	for i, src := range m.sources {
		buf := append(m.pending[i], src.ReadAvailable()...)
		// keep a dangling odd byte for the next drain
		if len(buf)%2 == 1 {
			m.pending[i] = []byte{buf[len(buf)-1]}
			buf = buf[:len(buf)-1]
		} else {
			m.pending[i] = nil
		}
		inputs[i] = buf
		if len(buf) > longest {
			longest = len(buf)
		}
	}

	return Mix(longest, inputs...)
}

// Mix sums PCM16 buffers sample-wise into an output of size bytes
func Mix(size int, inputs ...[]byte) []byte {
	if size <= 0 {
		return nil
	}
	size -= size % 2
	out := make([]byte, size)
	for off := 0; off < size; off += 2 {
		var sum int32
		for _, in := range inputs {
			if off+1 < len(in) {
				sum += int32(int16(binary.LittleEndian.Uint16(in[off:])))
			}
		}
		binary.LittleEndian.PutUint16(out[off:], uint16(clip(sum)))
	}
	return out
}

func clip(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
