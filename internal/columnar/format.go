package columnar

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/tfgraph/internal/hash"
)

const (
	// FileMagic identifies a section file ("TFG1").
	FileMagic uint32 = 0x54464731
	// FileVersion is the current section file version.
	FileVersion uint32 = 1

	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 32
	// SectionEntrySize is the size of one section table entry.
	SectionEntrySize = 16
	// SectionAlign is the alignment of every section start.
	SectionAlign = 8
)

// Kind identifies what a section file encodes.
type Kind uint32

const (
	KindOtype Kind = iota + 1
	KindCSR
	KindUint32s
	KindNodeFeature
	KindEdgeFeature
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindOtype:
		return "otype"
	case KindCSR:
		return "csr"
	case KindUint32s:
		return "uint32s"
	case KindNodeFeature:
		return "node-feature"
	case KindEdgeFeature:
		return "edge-feature"
	case KindBoundary:
		return "boundary"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Flags qualify the sections of a file.
const (
	// FlagIntValues marks a feature whose values are integers.
	FlagIntValues uint32 = 1 << iota
	// FlagEdgeValues marks an edge feature that carries values.
	FlagEdgeValues
	// FlagCompressed marks string pool data stored as a compressed block.
	FlagCompressed
)

// Writer accumulates sections and writes them as one section file.
type Writer struct {
	kind     Kind
	flags    uint32
	sections [][]byte
}

// NewWriter creates a writer for a file of the given kind.
func NewWriter(kind Kind) *Writer {
	return &Writer{kind: kind}
}

// SetFlags sets the header flags.
func (w *Writer) SetFlags(flags uint32) { w.flags = flags }

// Flags returns the header flags.
func (w *Writer) Flags() uint32 { return w.flags }

// AddBytes appends a raw byte section.
func (w *Writer) AddBytes(b []byte) {
	w.sections = append(w.sections, b)
}

// AddUint16s appends a little-endian uint16 array section.
func (w *Writer) AddUint16s(v []uint16) {
	b := make([]byte, 0, 2*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint16(b, x)
	}
	w.sections = append(w.sections, b)
}

// AddUint32s appends a little-endian uint32 array section.
func (w *Writer) AddUint32s(v []uint32) {
	b := make([]byte, 0, 4*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint32(b, x)
	}
	w.sections = append(w.sections, b)
}

// AddUint64s appends a little-endian uint64 array section.
func (w *Writer) AddUint64s(v []uint64) {
	b := make([]byte, 0, 8*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint64(b, x)
	}
	w.sections = append(w.sections, b)
}

// AddInt64s appends a little-endian int64 array section.
func (w *Writer) AddInt64s(v []int64) {
	b := make([]byte, 0, 8*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint64(b, uint64(x)) //nolint:gosec
	}
	w.sections = append(w.sections, b)
}

// AddCSR appends a CSR as two sections: row offsets, then data.
func (w *Writer) AddCSR(c *CSR) {
	w.AddUint32s(c.Indptr())
	w.AddUint32s(c.Data())
}

// AddPool appends a string pool as two sections: offsets, then bytes. The
// bytes are block-compressed when compression is enabled and pays off, in
// which case FlagCompressed is set.
func (w *Writer) AddPool(p *Pool, compression Compression) error {
	w.AddUint32s(p.Offsets())
	data := p.Data()
	if compression != CompressionNone {
		block, err := compressBlock(data, compression)
		if err != nil {
			return err
		}
		w.flags |= FlagCompressed
		data = block
	}
	w.AddBytes(data)
	return nil
}

func alignUp(n uint64) uint64 {
	return (n + SectionAlign - 1) &^ (SectionAlign - 1)
}

// WriteTo writes the complete section file.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	tableSize := uint64(SectionEntrySize * len(w.sections))
	head := make([]byte, HeaderSize+tableSize)

	binary.LittleEndian.PutUint32(head[0:], FileMagic)
	binary.LittleEndian.PutUint32(head[4:], FileVersion)
	binary.LittleEndian.PutUint32(head[8:], uint32(w.kind))
	binary.LittleEndian.PutUint32(head[12:], w.flags)
	binary.LittleEndian.PutUint32(head[16:], uint32(len(w.sections))) //nolint:gosec

	offset := alignUp(uint64(len(head)))
	for i, s := range w.sections {
		entry := head[HeaderSize+SectionEntrySize*i:]
		binary.LittleEndian.PutUint64(entry[0:], offset)
		binary.LittleEndian.PutUint64(entry[8:], uint64(len(s)))
		offset = alignUp(offset + uint64(len(s)))
	}
	binary.LittleEndian.PutUint32(head[28:], headerChecksum(head))

	var written int64
	write := func(b []byte) error {
		n, err := out.Write(b)
		written += int64(n)
		return err
	}
	var pad [SectionAlign]byte
	padTo := func() error {
		if rem := uint64(written) % SectionAlign; rem != 0 { //nolint:gosec
			return write(pad[:SectionAlign-rem])
		}
		return nil
	}

	if err := write(head); err != nil {
		return written, err
	}
	for _, s := range w.sections {
		if err := padTo(); err != nil {
			return written, err
		}
		if err := write(s); err != nil {
			return written, err
		}
	}
	return written, nil
}

// headerChecksum covers header bytes 0..28 and the section table.
func headerChecksum(head []byte) uint32 {
	h := hash.NewCRC32C()
	_, _ = h.Write(head[:28])
	_, _ = h.Write(head[HeaderSize:])
	return h.Sum32()
}
