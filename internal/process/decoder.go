package process

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Decoder converts raw output lines from the toolchain's console code page to UTF-8.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// NewDecoder looks up name in the WHATWG and IANA registries ("gbk",
// "windows-1252", "IBM437"). An empty name or any UTF-8 alias selects UTF-8.
func NewDecoder(name string) (*Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return &Decoder{name: "utf-8"}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		enc, err = ianaindex.IANA.Encoding(name)
	}
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported output encoding %q", name)
	}
	return &Decoder{name: name, enc: enc}, nil
}

// Name returns the encoding name the decoder was created with.
func (d *Decoder) Name() string {
	if d == nil {
		return "utf-8"
	}
	return d.name
}

// Decode returns the UTF-8 text of line. ok is false when line is not valid
// in the configured encoding.
func (d *Decoder) Decode(line []byte) (string, bool) {
	if d == nil || d.enc == nil {
		if !utf8.Valid(line) {
			return "", false
		}
		return string(line), true
	}
	out, err := d.enc.NewDecoder().Bytes(line)
	if err != nil {
		return "", false
	}
	// x/text decoders substitute U+FFFD for invalid input instead of failing.
	// Legacy code pages have no U+FFFD of their own, so one in the output
	// means the line did not decode.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
