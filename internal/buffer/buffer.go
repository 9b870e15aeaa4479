package buffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"hexview/internal/glyph"
)

// ErrNoFilename is returned when reloading a buffer that was not read from a file.
var ErrNoFilename = errors.New("no filename set")

// Format describes how the source file encodes its bytes.
type Format int

const (
	FormatRaw Format = iota
	FormatDump
)

// Buffer is a read-only document as loaded from disk.
type Buffer struct {
	filename string
	format   Format
	glyphs   *glyph.Maps
	hash     string
}

// FromBytes wraps data that did not come from a file.
func FromBytes(data []byte) *Buffer {
	return &Buffer{
		glyphs: glyph.Build(data),
		hash:   digest(data),
	}
}

// Open reads filename. A FormatDump file is decoded with glyph.ParseDump.
func Open(filename string, format Format) (*Buffer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	b.filename = filename
	return b, nil
}

// Read decodes everything from r.
func Read(r io.Reader, format Format) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	b := &Buffer{format: format, hash: digest(data)}
	if format == FormatDump {
		b.glyphs, err = glyph.ParseDump(string(data))
		if err != nil {
			return nil, err
		}
	} else {
		b.glyphs = glyph.Build(data)
	}
	return b, nil
}

func digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (b *Buffer) Filename() string {
	return b.filename
}

func (b *Buffer) Format() Format {
	return b.format
}

func (b *Buffer) Size() int64 {
	return int64(b.glyphs.Len())
}

// Glyphs returns the immutable glyph maps of the document.
func (b *Buffer) Glyphs() *glyph.Maps {
	return b.glyphs
}

// Hash is the sha256 of the file contents as read.
func (b *Buffer) Hash() string {
	return b.hash
}

func (b *Buffer) HasChangedOnDisk() (bool, error) {
	if b.filename == "" {
		return false, nil
	}

	f, err := os.Open(b.filename)
	if err != nil {
		return false, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}

	return hex.EncodeToString(h.Sum(nil)) != b.hash, nil
}

// Reload reads the file again in the same format.
func (b *Buffer) Reload() (*Buffer, error) {
	if b.filename == "" {
		return nil, ErrNoFilename
	}
	return Open(b.filename, b.format)
}
