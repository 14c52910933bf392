package compile

import (
	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

// Codec pairs the Writer and Reader compiled from one schema, optionally
// reading data written under an older writer schema.
type Codec struct {
	Schema *schema.Schema
	writer avrokit.Writer
	reader avrokit.Reader
}

// NewCodec compiles s for both directions.
func NewCodec(s *schema.Schema, opt avrokit.WriteOpt) (*Codec, error) {
	return NewResolvingCodec(s, s, opt)
}

// NewResolvingCodec writes with s and reads data written under writer,
// resolved into s.
func NewResolvingCodec(writer, s *schema.Schema, opt avrokit.WriteOpt) (*Codec, error) {
	w, err := Writer(s, opt)
	if err != nil {
		return nil, err
	}
	r, err := Reader(writer, s)
	if err != nil {
		return nil, err
	}
	return &Codec{Schema: s, writer: w, reader: r}, nil
}

// ParseCodec parses schema text (JSON) and compiles it.
func ParseCodec(text []byte, opt avrokit.WriteOpt) (*Codec, error) {
	s, err := schema.ParseSchema(text)
	if err != nil {
		return nil, err
	}
	return NewCodec(s, opt)
}

func (c *Codec) Writer() avrokit.Writer { return c.writer }
func (c *Codec) Reader() avrokit.Reader { return c.reader }

// Validate reports every issue of v as avrokit.Issues, or nil.
func (c *Codec) Validate(v any) error { return avrokit.Validate(c.writer, v) }

// Marshal validates and encodes v.
func (c *Codec) Marshal(v any) ([]byte, error) { return avrokit.Marshal(c.writer, v) }

// Unmarshal decodes one value occupying all of data.
func (c *Codec) Unmarshal(data []byte) (any, error) { return avrokit.Unmarshal(c.reader, data) }
