package columnar

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/hupe1980/tfgraph/internal/mmap"
)

var littleEndianHost = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// File is a parsed section file, backed by a memory mapping or by an
// in-memory byte slice.
type File struct {
	kind     Kind
	flags    uint32
	sections [][]byte
	mapping  *mmap.Mapping
}

// Open maps the section file at path and validates its header.
func Open(path string) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.mapping = m
	return f, nil
}

// Parse validates a section file held in memory. The returned File aliases
// data.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: file shorter than header", ErrCorrupted)
	}
	if binary.LittleEndian.Uint32(data[0:]) != FileMagic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != FileVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	n := uint64(binary.LittleEndian.Uint32(data[16:]))
	end := HeaderSize + SectionEntrySize*n
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: section table truncated", ErrCorrupted)
	}
	if headerChecksum(data[:end]) != binary.LittleEndian.Uint32(data[28:]) {
		return nil, ErrChecksum
	}

	f := &File{
		kind:     Kind(binary.LittleEndian.Uint32(data[8:])),
		flags:    binary.LittleEndian.Uint32(data[12:]),
		sections: make([][]byte, n),
	}
	for i := range f.sections {
		entry := data[HeaderSize+SectionEntrySize*i:]
		off := binary.LittleEndian.Uint64(entry[0:])
		size := binary.LittleEndian.Uint64(entry[8:])
		if off > uint64(len(data)) || size > uint64(len(data))-off {
			return nil, fmt.Errorf("%w: section %d out of bounds", ErrCorrupted, i)
		}
		f.sections[i] = data[off : off+size : off+size]
	}
	return f, nil
}

// Kind returns the file kind.
func (f *File) Kind() Kind { return f.kind }

// Flags returns the header flags.
func (f *File) Flags() uint32 { return f.flags }

// NumSections returns the number of sections.
func (f *File) NumSections() int { return len(f.sections) }

// Expect checks the file kind and minimum section count.
func (f *File) Expect(kind Kind, sections int) error {
	if f.kind != kind {
		return fmt.Errorf("%w: got %s, want %s", ErrKind, f.kind, kind)
	}
	if len(f.sections) < sections {
		return fmt.Errorf("%w: %s file has %d sections, want %d", ErrCorrupted, kind, len(f.sections), sections)
	}
	return nil
}

// Close releases the mapping, if any. Views obtained from the file must not
// be used afterwards.
func (f *File) Close() error {
	if f.mapping != nil {
		return f.mapping.Close()
	}
	return nil
}

// Advise hints the kernel about the access pattern of the whole file.
func (f *File) Advise(pattern mmap.AccessPattern) error {
	if f.mapping == nil {
		return nil
	}
	return f.mapping.Advise(pattern)
}

func (f *File) section(i int) ([]byte, error) {
	if i < 0 || i >= len(f.sections) {
		return nil, fmt.Errorf("%w: no section %d", ErrCorrupted, i)
	}
	return f.sections[i], nil
}

// Bytes returns section i without copying.
func (f *File) Bytes(i int) ([]byte, error) {
	return f.section(i)
}

// Uint16s returns section i as a uint16 array.
func (f *File) Uint16s(i int) ([]uint16, error) {
	b, err := f.section(i)
	if err != nil {
		return nil, err
	}
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%w: section %d length %d is not a multiple of 2", ErrCorrupted, i, len(b))
	}
	if len(b) == 0 {
		return []uint16{}, nil
	}
	if littleEndianHost && uintptr(unsafe.Pointer(&b[0]))%2 == 0 {
		return unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), len(b)/2), nil
	}
	out := make([]uint16, len(b)/2)
	for j := range out {
		out[j] = binary.LittleEndian.Uint16(b[2*j:])
	}
	return out, nil
}

// Uint32s returns section i as a uint32 array. Aligned sections on
// little-endian hosts are reinterpreted in place; anything else is decoded
// into a copy.
func (f *File) Uint32s(i int) ([]uint32, error) {
	b, err := f.section(i)
	if err != nil {
		return nil, err
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: section %d length %d is not a multiple of 4", ErrCorrupted, i, len(b))
	}
	if len(b) == 0 {
		return []uint32{}, nil
	}
	if littleEndianHost && uintptr(unsafe.Pointer(&b[0]))%4 == 0 {
		return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/4), nil
	}
	out := make([]uint32, len(b)/4)
	for j := range out {
		out[j] = binary.LittleEndian.Uint32(b[4*j:])
	}
	return out, nil
}

// Uint64s returns section i as a uint64 array.
func (f *File) Uint64s(i int) ([]uint64, error) {
	b, err := f.section(i)
	if err != nil {
		return nil, err
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: section %d length %d is not a multiple of 8", ErrCorrupted, i, len(b))
	}
	if len(b) == 0 {
		return []uint64{}, nil
	}
	if littleEndianHost && uintptr(unsafe.Pointer(&b[0]))%8 == 0 {
		return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8), nil
	}
	out := make([]uint64, len(b)/8)
	for j := range out {
		out[j] = binary.LittleEndian.Uint64(b[8*j:])
	}
	return out, nil
}

// Int64s returns section i as an int64 array.
func (f *File) Int64s(i int) ([]int64, error) {
	u, err := f.Uint64s(i)
	if err != nil {
		return nil, err
	}
	if len(u) == 0 {
		return []int64{}, nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&u[0])), len(u)), nil
}

// CSR reads a CSR stored at sections i and i+1.
func (f *File) CSR(i int) (*CSR, error) {
	indptr, err := f.Uint32s(i)
	if err != nil {
		return nil, err
	}
	data, err := f.Uint32s(i + 1)
	if err != nil {
		return nil, err
	}
	return NewCSR(indptr, data)
}

// Pool reads a string pool stored at sections i and i+1, decompressing the
// bytes when FlagCompressed is set.
func (f *File) Pool(i int) (*Pool, error) {
	offsets, err := f.Uint32s(i)
	if err != nil {
		return nil, err
	}
	data, err := f.Bytes(i + 1)
	if err != nil {
		return nil, err
	}
	if f.flags&FlagCompressed != 0 {
		if data, err = decompressBlock(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
	}
	return NewPool(offsets, data)
}
