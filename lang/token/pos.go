package token

import (
	"fmt"
	"sort"
	"strconv"
)

// Pos is an opaque source position, valid only relative to the FileSet that
// created it. The zero value, NoPos, means "unknown".
type Pos int32

// NoPos is the zero value of Pos, meaning no position is known.
const NoPos Pos = 0

// File tracks the line boundaries of a single source file registered in a
// FileSet, so that a Pos value belonging to it can be translated back to a
// 1-based line and column.
type File struct {
	name  string
	base  Pos // Pos value of the file's first byte
	size  int // length of the file's content, in bytes
	lines []int
	// 0-based byte offsets of each newline character found in the file,
	// in increasing order.
}

// Name returns the file's name, as registered with the FileSet.
func (f *File) Name() string { return f.name }

// Base returns the file's base Pos value.
func (f *File) Base() Pos { return f.base }

// Size returns the size in bytes of the file's content.
func (f *File) Size() int { return f.size }

// AddLine records that a newline character was scanned at the given 0-based
// byte offset into the file's content. Offsets must be added in increasing
// order.
func (f *File) AddLine(offset int) {
	if n := len(f.lines); n == 0 || f.lines[n-1] < offset {
		f.lines = append(f.lines, offset)
	}
}

// Pos returns the Pos value corresponding to the given 0-based byte offset
// into the file's content.
func (f *File) Pos(offset int) Pos { return f.base + Pos(offset) }

// Position returns the 1-based line and column corresponding to p, which
// must be a Pos belonging to this file.
func (f *File) Position(p Pos) (line, col int) {
	offset := int(p - f.base)
	// lineIdx is the number of recorded newlines strictly before offset,
	// i.e. how many complete lines precede the one offset falls on.
	lineIdx := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] >= offset })
	line = lineIdx + 1
	lineStart := 0
	if lineIdx > 0 {
		lineStart = f.lines[lineIdx-1] + 1
	}
	col = offset - lineStart + 1
	return line, col
}

// FileSet tracks a set of files, assigning each a disjoint range of Pos
// values so that Pos values can be resolved back to the File (and line/col)
// they belong to without needing to carry a *File around everywhere.
type FileSet struct {
	files   []*File
	nextPos Pos
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{nextPos: 1}
}

// AddFile registers a new file of the given size (in bytes) and returns its
// *File. If base is negative, the next available Pos value is used;
// otherwise base is used as-is (the caller is responsible for avoiding
// overlap, as in the standard library's go/token package).
func (fs *FileSet) AddFile(name string, base, size int) *File {
	b := Pos(base)
	if base < 0 {
		b = fs.nextPos
	}
	f := &File{name: name, base: b, size: size}
	fs.files = append(fs.files, f)
	fs.nextPos = b + Pos(size) + 1
	return f
}

// File returns the *File that p belongs to, or nil if p is not covered by
// any file registered in fs.
func (fs *FileSet) File(p Pos) *File {
	for _, f := range fs.files {
		if p >= f.base && int(p-f.base) <= f.size {
			return f
		}
	}
	return nil
}

// PosMode controls how FormatPos renders a position.
type PosMode int

const (
	PosNone    PosMode = iota // no position at all
	PosLong                   // file:line:col
	PosOffsets                // 0-based byte offset only
	PosRaw                    // the raw Pos value
)

func (m PosMode) String() string {
	switch m {
	case PosNone:
		return "none"
	case PosLong:
		return "long"
	case PosOffsets:
		return "offsets"
	case PosRaw:
		return "raw"
	default:
		return "invalid"
	}
}

// FormatPos renders pos according to mode. withName controls whether the
// file's name is included for PosLong; it has no effect on the other modes.
func FormatPos(mode PosMode, f *File, pos Pos, withName bool) string {
	switch mode {
	case PosRaw:
		return strconv.Itoa(int(pos))
	case PosOffsets:
		if pos == NoPos || f == nil {
			return "-"
		}
		return strconv.Itoa(int(pos - f.base))
	case PosLong:
		name := ""
		if withName && f != nil {
			name = f.Name()
		}
		if pos == NoPos || f == nil {
			return name + ":-:-"
		}
		line, col := f.Position(pos)
		return fmt.Sprintf("%s:%d:%d", name, line, col)
	default:
		return ""
	}
}

// Position is the fully-resolved form of a Pos: a filename plus a 1-based
// line and column, detached from any FileSet so it can be carried in error
// values after compilation.
type Position struct {
	Filename string
	Line     int
	Col      int
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// PositionFor resolves p against f into a detached Position.
func PositionFor(f *File, p Pos) Position {
	if f == nil || p == NoPos {
		return Position{}
	}
	line, col := f.Position(p)
	return Position{Filename: f.Name(), Line: line, Col: col}
}
