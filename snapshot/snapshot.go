// Package snapshot implements the persistence format for vector indexes.
//
// A snapshot is a self-describing binary blob: a fixed header naming the
// payload codec, body compression, metric and dimension, followed by a
// checksummed body of entry records. Loading rebuilds the in-memory
// index from the records, so the format stays independent of any index
// internals.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/hupe1980/vecidx/codec"
	"github.com/hupe1980/vecidx/distance"
	"github.com/hupe1980/vecidx/metadata"
	"github.com/hupe1980/vecidx/pk"
)

const (
	magic   = uint32(0x56494458) // "VIDX"
	version = uint16(1)
)

var (
	// ErrBadMagic is returned when the blob is not a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrVersionMismatch is returned for snapshots written by a newer
	// format version.
	ErrVersionMismatch = errors.New("snapshot: unsupported version")
	// ErrChecksum is returned when the body fails CRC validation.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrTruncated is returned when the blob ends mid-structure.
	ErrTruncated = errors.New("snapshot: truncated")
)

// Header describes a snapshot and the index it restores to.
type Header struct {
	// Codec is the name of the codec that encoded metadata and payloads.
	Codec string

	// Compression names the body compression.
	Compression Compression

	// Metric is the distance metric of the index.
	Metric distance.Metric

	// Dimension is the vector dimensionality.
	Dimension int

	// IndexKind identifies the index implementation ("flat", "hnsw").
	IndexKind string

	// NextSeq is the insertion sequence counter to resume from.
	NextSeq uint64
}

// Record is one index entry in portable form.
type Record struct {
	Key      pk.Key
	Seq      uint64
	Vector   []float32
	Metadata metadata.Document
	Payload  []byte
}

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Encode serializes a snapshot.
func Encode(h Header, records []Record) ([]byte, error) {
	if h.Codec == "" {
		h.Codec = codec.Default.Name()
	}
	if h.Compression == "" {
		h.Compression = CompressionZstd
	}
	if !h.Compression.Valid() {
		return nil, fmt.Errorf("unknown compression %q", h.Compression)
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", h.Codec)
	}

	body, err := encodeBody(h, records, c)
	if err != nil {
		return nil, err
	}

	compressed, err := compress(h.Compression, body)
	if err != nil {
		return nil, err
	}

	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, magic)
	buf = binary.LittleEndian.AppendUint16(buf, version)
	buf = appendString(buf, h.Codec)
	buf = appendString(buf, string(h.Compression))
	buf = append(buf, byte(h.Metric))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Dimension))
	buf = appendString(buf, h.IndexKind)
	buf = binary.LittleEndian.AppendUint64(buf, h.NextSeq)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(records)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(compressed)))
	buf = binary.LittleEndian.AppendUint32(buf, crc32.Checksum(compressed, crcTable))
	buf = append(buf, compressed...)

	return buf, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (Header, []Record, error) {
	var h Header

	r := &reader{data: data}

	m, err := r.uint32()
	if err != nil {
		return h, nil, err
	}
	if m != magic {
		return h, nil, ErrBadMagic
	}

	v, err := r.uint16()
	if err != nil {
		return h, nil, err
	}
	if v != version {
		return h, nil, fmt.Errorf("%w: %d", ErrVersionMismatch, v)
	}

	if h.Codec, err = r.string(); err != nil {
		return h, nil, err
	}

	comp, err := r.string()
	if err != nil {
		return h, nil, err
	}
	h.Compression = Compression(comp)

	metricByte, err := r.byte()
	if err != nil {
		return h, nil, err
	}
	h.Metric = distance.Metric(metricByte)

	dim, err := r.uint32()
	if err != nil {
		return h, nil, err
	}
	h.Dimension = int(dim)

	if h.IndexKind, err = r.string(); err != nil {
		return h, nil, err
	}

	if h.NextSeq, err = r.uint64(); err != nil {
		return h, nil, err
	}

	count, err := r.uint64()
	if err != nil {
		return h, nil, err
	}

	bodyLen, err := r.uint64()
	if err != nil {
		return h, nil, err
	}

	sum, err := r.uint32()
	if err != nil {
		return h, nil, err
	}

	compressed, err := r.bytes(int(bodyLen))
	if err != nil {
		return h, nil, err
	}
	if crc32.Checksum(compressed, crcTable) != sum {
		return h, nil, ErrChecksum
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return h, nil, fmt.Errorf("unknown codec %q", h.Codec)
	}

	body, err := decompress(h.Compression, compressed)
	if err != nil {
		return h, nil, err
	}

	records, err := decodeBody(h, body, int(count), c)
	if err != nil {
		return h, nil, err
	}

	return h, records, nil
}

func encodeBody(h Header, records []Record, c codec.Codec) ([]byte, error) {
	var buf []byte

	for i, rec := range records {
		if len(rec.Vector) != h.Dimension {
			return nil, fmt.Errorf("record %d: vector has %d dimensions, want %d", i, len(rec.Vector), h.Dimension)
		}

		switch rec.Key.Kind() {
		case pk.KindUint64:
			u, _ := rec.Key.Uint64()
			buf = append(buf, byte(pk.KindUint64))
			buf = binary.AppendUvarint(buf, u)
		case pk.KindString:
			s, _ := rec.Key.StringValue()
			buf = append(buf, byte(pk.KindString))
			buf = appendString(buf, s)
		default:
			return nil, fmt.Errorf("record %d: zero key", i)
		}

		buf = binary.AppendUvarint(buf, rec.Seq)

		for _, v := range rec.Vector {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}

		if len(rec.Metadata) == 0 {
			buf = binary.AppendUvarint(buf, 0)
		} else {
			md, err := c.Marshal(rec.Metadata)
			if err != nil {
				return nil, fmt.Errorf("record %d: encode metadata: %w", i, err)
			}
			buf = binary.AppendUvarint(buf, uint64(len(md)))
			buf = append(buf, md...)
		}

		buf = binary.AppendUvarint(buf, uint64(len(rec.Payload)))
		buf = append(buf, rec.Payload...)
	}

	return buf, nil
}

func decodeBody(h Header, body []byte, count int, c codec.Codec) ([]Record, error) {
	r := &reader{data: body}
	records := make([]Record, 0, count)

	for i := 0; i < count; i++ {
		var rec Record

		kind, err := r.byte()
		if err != nil {
			return nil, err
		}

		switch pk.Kind(kind) {
		case pk.KindUint64:
			u, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			rec.Key = pk.Uint64Key(u)
		case pk.KindString:
			s, err := r.string()
			if err != nil {
				return nil, err
			}
			rec.Key = pk.StringKey(s)
		default:
			return nil, fmt.Errorf("record %d: unknown key kind %d", i, kind)
		}

		if rec.Seq, err = r.uvarint(); err != nil {
			return nil, err
		}

		rec.Vector = make([]float32, h.Dimension)
		for j := range rec.Vector {
			bits, err := r.uint32()
			if err != nil {
				return nil, err
			}
			rec.Vector[j] = math.Float32frombits(bits)
		}

		mdLen, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		if mdLen > 0 {
			md, err := r.bytes(int(mdLen))
			if err != nil {
				return nil, err
			}
			if err := c.Unmarshal(md, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("record %d: decode metadata: %w", i, err)
			}
		}

		payloadLen, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		if payloadLen > 0 {
			p, err := r.bytes(int(payloadLen))
			if err != nil {
				return nil, err
			}
			rec.Payload = append([]byte(nil), p...)
		}

		records = append(records, rec)
	}

	return records, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) bytes(n int) ([]byte, error) {
	// n > len-off instead of off+n > len: a hostile length prefix near
	// MaxInt64 would overflow the addition.
	if n < 0 || n > len(r.data)-r.off {
		return nil, ErrTruncated
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, ErrTruncated
	}
	r.off += n
	return v, nil
}

func (r *reader) string() (string, error) {
	n, err := r.uvarint()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
