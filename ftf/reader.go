package ftf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader decodes a stream of FTF records. Unknown record and argument
// types are skipped using their declared sizes, so a Reader built for this
// producer still walks traces containing record kinds it does not model.
type Reader struct {
	r io.Reader
}

// NewReader wraps r for record-at-a-time decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record, or io.EOF at a clean end of stream.
func (d *Reader) Next() (Record, error) {
	for {
		header, err := d.readWord()
		if err != nil {
			return nil, err
		}
		if header == MagicWord {
			return MagicRecord{}, nil
		}

		size := int(header >> 4 & 0xFFF)
		if size < 1 {
			return nil, fmt.Errorf("ftf: record header %#016x declares zero size", header)
		}
		body, err := d.readBody(size - 1)
		if err != nil {
			return nil, err
		}

		c := &cursor{buf: body}
		switch header & 0xF {
		case typeMetadata:
			if header>>16&0xF == metadataProviderInfo {
				return decodeProviderInfo(header, c)
			}
			// Unknown metadata subtype: skip and keep reading.
		case typeString:
			return decodeString(header, c)
		case typeThread:
			return decodeThread(header, c)
		case typeEvent:
			return decodeEvent(header, c)
		default:
			// Unknown record type: skip and keep reading.
		}
	}
}

// readWord reads one word, returning io.EOF only at a record boundary.
func (d *Reader) readWord() (uint64, error) {
	var buf [WordSize]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// readBody reads the remaining n words of a record.
func (d *Reader) readBody(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n*WordSize)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("ftf: truncated record body: %w", err)
	}
	return buf, nil
}

// cursor walks a record body word by word.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) word() (uint64, error) {
	if c.off+WordSize > len(c.buf) {
		return 0, fmt.Errorf("ftf: record body overrun at offset %d", c.off)
	}
	w := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += WordSize
	return w, nil
}

// str reads n bytes and skips the zero padding to the next word boundary.
func (c *cursor) str(n int) (string, error) {
	if c.off+n > len(c.buf) {
		return "", fmt.Errorf("ftf: string payload overrun at offset %d", c.off)
	}
	s := string(c.buf[c.off : c.off+n])
	c.off += paddedWords(n) * WordSize
	return s, nil
}

// stringRef decodes a 16-bit string reference field, consuming the inline
// payload when present.
func (c *cursor) stringRef(field uint64) (StringRef, error) {
	field &= 0xFFFF
	if field == 0 {
		return StringRef{}, nil
	}
	if field&0x8000 != 0 {
		value, err := c.str(int(field & 0x7FFF))
		if err != nil {
			return StringRef{}, err
		}
		return StringRef{Value: value, Inline: true}, nil
	}
	return StringRef{Index: uint16(field)}, nil
}

func decodeProviderInfo(header uint64, c *cursor) (Record, error) {
	name, err := c.str(int(header >> 52 & 0xFF))
	if err != nil {
		return nil, err
	}
	return ProviderInfoRecord{
		ID:   uint32(header >> 20 & 0xFFFFFFFF),
		Name: name,
	}, nil
}

func decodeString(header uint64, c *cursor) (Record, error) {
	value, err := c.str(int(header >> 32 & 0x7FFF))
	if err != nil {
		return nil, err
	}
	return StringRecord{
		Index: uint16(header >> 16 & 0x7FFF),
		Value: value,
	}, nil
}

func decodeThread(header uint64, c *cursor) (Record, error) {
	process, err := c.word()
	if err != nil {
		return nil, err
	}
	thread, err := c.word()
	if err != nil {
		return nil, err
	}
	return ThreadRecord{
		Index:   uint8(header >> 16 & 0xFF),
		Process: process,
		Thread:  thread,
	}, nil
}

func decodeEvent(header uint64, c *cursor) (Record, error) {
	rec := EventRecord{Type: EventType(header >> 16 & 0xF)}

	ts, err := c.word()
	if err != nil {
		return nil, err
	}
	rec.Timestamp = ts

	if index := uint8(header >> 24 & 0xFF); index != 0 {
		rec.Thread = ThreadRef{Index: index}
	} else {
		process, err := c.word()
		if err != nil {
			return nil, err
		}
		thread, err := c.word()
		if err != nil {
			return nil, err
		}
		rec.Thread = ThreadRef{Process: process, Thread: thread, Inline: true}
	}

	if rec.Category, err = c.stringRef(header >> 32); err != nil {
		return nil, err
	}
	if rec.Name, err = c.stringRef(header >> 48); err != nil {
		return nil, err
	}

	argc := int(header >> 20 & 0xF)
	for i := 0; i < argc; i++ {
		arg, ok, err := decodeArgument(c)
		if err != nil {
			return nil, err
		}
		if ok {
			rec.Args = append(rec.Args, arg)
		}
	}
	return rec, nil
}

func decodeArgument(c *cursor) (Argument, bool, error) {
	start := c.off
	header, err := c.word()
	if err != nil {
		return Argument{}, false, err
	}
	size := int(header >> 4 & 0xFFF)
	if size < 1 || start+size*WordSize > len(c.buf) {
		return Argument{}, false, fmt.Errorf("ftf: argument header %#016x has invalid size", header)
	}

	name, err := c.stringRef(header >> 16)
	if err != nil {
		return Argument{}, false, err
	}

	var (
		arg   Argument
		known = true
	)
	switch header & 0xF {
	case wireArgInt64:
		v, err := c.word()
		if err != nil {
			return Argument{}, false, err
		}
		arg = Int64Arg(name, int64(v))
	case wireArgUint64:
		v, err := c.word()
		if err != nil {
			return Argument{}, false, err
		}
		arg = Uint64Arg(name, v)
	case wireArgFloat64:
		v, err := c.word()
		if err != nil {
			return Argument{}, false, err
		}
		arg = Float64Arg(name, math.Float64frombits(v))
	case wireArgString:
		value, err := c.stringRef(header >> 32)
		if err != nil {
			return Argument{}, false, err
		}
		arg = StringArg(name, value)
	case wireArgBool:
		arg = BoolArg(name, header>>32&1 == 1)
	default:
		known = false
	}

	// Realign to the declared size so unknown payload layouts cannot
	// desynchronize the remaining arguments.
	c.off = start + size*WordSize
	return arg, known, nil
}
