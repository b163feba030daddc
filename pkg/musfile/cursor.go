package musfile

import "fmt"

// Cursor is a forward-only reader over an in-memory byte region. The decoder
// uses one cursor per logical region (header, sequence order, note matrix) so
// region boundaries stay unambiguous.
//
// Reads that would run past the end fail with ErrOutOfBounds instead of
// returning a short slice; a malformed file must surface as an error, not as
// silently misparsed output.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a cursor over data. The cursor does not copy data; the
// returned slices alias it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Consume returns the next n bytes and advances the position.
func (c *Cursor) Consume(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// Peek returns the next n bytes without advancing the position.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, fmt.Errorf("%w: need %d bytes at offset %#x, %d remaining",
			ErrOutOfBounds, n, c.pos, len(c.data)-c.pos)
	}
	return c.data[c.pos : c.pos+n], nil
}

// Pos returns the current offset from the start of the region.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}
