package secrets

import (
	"bytes"
)

// redacted is what a Blob prints as. The real content is only reachable
// through Bytes or Reveal, so a stray %v or %s in a log line cannot leak
// secrets.
const redacted = "[redacted]"

// Blob is an opaque secret payload, conventionally newline-delimited
// KEY=VALUE text. The run pipeline never parses or validates the content;
// it is carried verbatim from source to artifact.
type Blob struct {
	content []byte
}

// NewBlob wraps raw secret content. The bytes are copied so later mutation
// of the source slice cannot change the blob.
func NewBlob(content []byte) Blob {
	return Blob{content: append([]byte(nil), content...)}
}

// Empty reports whether the blob holds no usable content. Whitespace-only
// content counts as empty.
func (b Blob) Empty() bool {
	return len(bytes.TrimSpace(b.content)) == 0
}

// Len returns the content length in bytes.
func (b Blob) Len() int {
	return len(b.content)
}

// Bytes returns the secret content.
func (b Blob) Bytes() []byte {
	return b.content
}

// Reveal returns the secret content as a string. The name makes accidental
// exposure grep-able.
func (b Blob) Reveal() string {
	return string(b.content)
}

// String implements fmt.Stringer with a fixed placeholder.
func (b Blob) String() string {
	return redacted
}
