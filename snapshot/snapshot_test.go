package snapshot

import (
	"encoding/binary"
	"testing"

	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/metadata"
	"github.com/hupe1980/vecidx/pk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{
			Key:    pk.StringKey("msg-1"),
			Seq:    1,
			Vector: []float32{0.1, 0.2, 0.3},
			Metadata: metadata.Document{
				"role": metadata.String("user"),
				"turn": metadata.Int(4),
			},
			Payload: []byte(`{"text":"hello"}`),
		},
		{
			Key:    pk.Uint64Key(7),
			Seq:    2,
			Vector: []float32{-1, 0, 1},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, comp := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(string(comp), func(t *testing.T) {
			h := Header{
				Compression: comp,
				Metric:      distance.MetricCosine,
				Dimension:   3,
				IndexKind:   "flat",
				NextSeq:     3,
			}

			data, err := Encode(h, sampleRecords())
			require.NoError(t, err)

			got, records, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, "json", got.Codec)
			assert.Equal(t, comp, got.Compression)
			assert.Equal(t, distance.MetricCosine, got.Metric)
			assert.Equal(t, 3, got.Dimension)
			assert.Equal(t, "flat", got.IndexKind)
			assert.Equal(t, uint64(3), got.NextSeq)

			require.Len(t, records, 2)
			assert.Equal(t, pk.StringKey("msg-1"), records[0].Key)
			assert.Equal(t, uint64(1), records[0].Seq)
			assert.Equal(t, []float32{0.1, 0.2, 0.3}, records[0].Vector)
			assert.Equal(t, metadata.String("user"), records[0].Metadata["role"])
			assert.Equal(t, []byte(`{"text":"hello"}`), records[0].Payload)

			assert.Equal(t, pk.Uint64Key(7), records[1].Key)
			assert.Empty(t, records[1].Metadata)
			assert.Empty(t, records[1].Payload)
		})
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, _, err := Decode([]byte("not a snapshot at all"))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeTruncated(t *testing.T) {
	data, err := Encode(Header{Dimension: 3, IndexKind: "flat"}, sampleRecords())
	require.NoError(t, err)

	_, _, err = Decode(data[:len(data)-4])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeHugeLengthPrefix(t *testing.T) {
	// Valid magic and version followed by a near-MaxInt64 length prefix
	// for the codec name. Decode must fail cleanly, not panic.
	data := binary.LittleEndian.AppendUint32(nil, magic)
	data = binary.LittleEndian.AppendUint16(data, version)
	data = binary.AppendUvarint(data, uint64(1<<63)-1)

	_, _, err := Decode(data)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeCorruptBody(t *testing.T) {
	data, err := Encode(Header{Dimension: 3, IndexKind: "flat", Compression: CompressionNone}, sampleRecords())
	require.NoError(t, err)

	data[len(data)-1] ^= 0xff

	_, _, err = Decode(data)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestEncodeRejectsDimensionMismatch(t *testing.T) {
	_, err := Encode(Header{Dimension: 4, IndexKind: "flat"}, sampleRecords())
	assert.Error(t, err)
}

func TestEncodeRejectsUnknownCompression(t *testing.T) {
	_, err := Encode(Header{Dimension: 3, Compression: "brotli"}, nil)
	assert.Error(t, err)
}
