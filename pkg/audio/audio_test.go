package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufSource struct {
	chunks [][]byte
}

func (b *bufSource) ReadAvailable() []byte {
	if len(b.chunks) == 0 {
		return nil
	}
	c := b.chunks[0]
	b.chunks = b.chunks[1:]
	return c
}

func pcm(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func samples(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

func TestMergeNode_MixesAndPads(t *testing.T) {
	display := &bufSource{chunks: [][]byte{pcm(100, 200, 300)}}
	mic := &bufSource{chunks: [][]byte{pcm(1, 2)}}

	node := NewMergeNode(display, mic)
	out := node.Drain()

	assert.Equal(t, []int16{101, 202, 300}, samples(out))
}

func TestMergeNode_ClipsOverflow(t *testing.T) {
	a := &bufSource{chunks: [][]byte{pcm(math.MaxInt16, math.MinInt16)}}
	b := &bufSource{chunks: [][]byte{pcm(1000, -1000)}}

	out := NewMergeNode(a, b).Drain()

	assert.Equal(t, []int16{math.MaxInt16, math.MinInt16}, samples(out))
}

func TestMergeNode_CarriesOddByte(t *testing.T) {
	full := pcm(258)
	src := &bufSource{chunks: [][]byte{full[:1], full[1:]}}
	node := NewMergeNode(src)

	assert.Empty(t, node.Drain())
	assert.Equal(t, []int16{258}, samples(node.Drain()))
}

func TestMergeNode_EmptySources(t *testing.T) {
	node := NewMergeNode(&bufSource{}, &bufSource{})
	assert.Nil(t, node.Drain())
}

func TestEncodeDecodeWAV(t *testing.T) {
	data := pcm(1, -1, 32000)
	wav := EncodeWAV(data, DefaultFormat)

	require.Len(t, wav, wavHeaderSize+len(data))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))

	got, f, err := DecodeWAV(wav)
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, f)
	assert.Equal(t, data, got)
}

func TestDecodeWAV_Rejects(t *testing.T) {
	_, _, err := DecodeWAV([]byte("not audio at all"))
	assert.ErrorIs(t, err, ErrNotWAV)
}

func TestFormat_Duration(t *testing.T) {
	// 16 kHz mono PCM16 is 32000 bytes per second
	assert.Equal(t, "1s", DefaultFormat.Duration(32000).String())
	assert.Equal(t, "250ms", DefaultFormat.Duration(8000).String())
}

func TestSelectMimeType(t *testing.T) {
	assert.Equal(t, MimeWAV, SelectMimeType(ServerEncoderSupports))

	browser := func(m string) bool { return m == "audio/webm" || m == "audio/mp4" }
	assert.Equal(t, "audio/webm", SelectMimeType(browser))

	none := func(string) bool { return false }
	assert.Equal(t, "", SelectMimeType(none))
}
