// Package wire moves compiled images between processes. An image travels
// inside a canonical-CBOR envelope that carries the SHA-256 of its
// payload, so the receiving side can verify the bytes before handing them
// to the engine.
package wire

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/squib/buffer"
)

// EnvelopeVersion is the current envelope format version.
const EnvelopeVersion uint32 = 1

var (
	// ErrEmptyImage indicates an attempt to seal a buffer with no data.
	ErrEmptyImage = errors.New("wire: cannot seal an empty image")

	// ErrHashMismatch indicates the payload does not match the hash it
	// was sealed with.
	ErrHashMismatch = errors.New("wire: payload hash mismatch")

	// ErrUnknownVersion indicates an envelope from an incompatible peer.
	ErrUnknownVersion = errors.New("wire: unknown envelope version")
)

// Canonical mode keeps encodings deterministic across peers.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Envelope is the transfer unit for a compiled image. The payload is
// opaque; Name is advisory metadata for the receiver.
type Envelope struct {
	Version uint32   `cbor:"version"`
	Name    string   `cbor:"name"`
	Hash    [32]byte `cbor:"hash"`
	Payload []byte   `cbor:"payload"`
}

// Seal wraps the buffer's image in a new envelope. The payload is copied,
// so later mutation of the buffer does not affect the envelope.
func Seal(name string, buf *buffer.Buffer) (*Envelope, error) {
	if buf.Size() == 0 {
		return nil, ErrEmptyImage
	}
	payload := make([]byte, buf.Size())
	copy(payload, buf.Data())
	return &Envelope{
		Version: EnvelopeVersion,
		Name:    name,
		Hash:    sha256.Sum256(payload),
		Payload: payload,
	}, nil
}

// MarshalEnvelope serializes an envelope to canonical CBOR bytes.
func MarshalEnvelope(e *Envelope) ([]byte, error) {
	return cborEncMode.Marshal(e)
}

// UnmarshalEnvelope deserializes an envelope and checks its version. The
// payload hash is NOT verified here; that happens in Open.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("wire: unmarshal envelope: %w", err)
	}
	if e.Version != EnvelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, e.Version)
	}
	return &e, nil
}

// Open verifies the payload against the sealed hash and returns a fresh
// buffer holding the image, read cursor at the start.
func (e *Envelope) Open() (*buffer.Buffer, error) {
	if sha256.Sum256(e.Payload) != e.Hash {
		return nil, ErrHashMismatch
	}
	return buffer.NewFromBytes(e.Payload), nil
}
