package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/source"
)

// Cursor представляет собой позицию в файле. It only moves forward during a scan.
type Cursor struct {
	File *source.File
	Off  uint32
}

// NewCursor creates a new cursor for the provided file.
func NewCursor(f *source.File) Cursor {
	return Cursor{File: f, Off: 0}
}

// EOF проверяет, достигнут ли конец файла
func (c *Cursor) EOF() bool {
	return int(c.Off) >= len(c.File.Content)
}

// Peek читает текущий байт, если есть, иначе возвращает 0
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Rest returns the unconsumed content.
func (c *Cursor) Rest() []byte {
	if c.EOF() {
		return nil
	}
	return c.File.Content[c.Off:]
}

// Advance moves the cursor n bytes forward. n must be positive and within bounds.
func (c *Cursor) Advance(n int) {
	if n <= 0 || int(c.Off)+n > len(c.File.Content) {
		panic(fmt.Errorf("cursor advance by %d at offset %d out of range", n, c.Off))
	}
	un, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("cursor advance overflow: %w", err))
	}
	c.Off += un
}

// Mark это метка, что бы быстро получать Span читаемого фрагмента
type Mark uint32

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom получает Span для фрагмента, начиная с метки
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{
		File:  c.File.ID,
		Start: uint32(m),
		End:   c.Off,
	}
}
