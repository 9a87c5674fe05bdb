package token

import stdtoken "go/token"

// Position identifies a source location by filename, line and column, for
// use in diagnostic messages. It is an alias for the standard library's
// go/token.Position so that lang/scanner can reuse go/scanner's error
// aggregation machinery unchanged.
type Position = stdtoken.Position

// File associates a name (typically, but not necessarily, a path on disk)
// with the positions reported by the scanner for one chunk of source text.
// Unlike go/token.File, it does not track byte offsets: Pos already carries
// a decoded line/column pair (see pos.go), computed directly by the scanner
// as it advances through the source.
type File struct {
	name string
}

// NewFile returns a File identified by name. An empty name is valid; it
// denotes source text with no associated filename (e.g. a REPL snippet
// supplied directly by the host).
func NewFile(name string) *File { return &File{name: name} }

// Name returns the file's name.
func (f *File) Name() string { return f.name }

// Position resolves p, a position within this file, to a full Position.
func (f *File) Position(p Pos) Position {
	line, col := p.LineCol()
	return Position{Filename: f.name, Line: line, Column: col}
}
