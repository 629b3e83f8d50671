package buffer

// ---------------------------------------------------------------------------
// Engine callback adapters
//
// The engine's closure serialization protocol is untyped: it holds an
// opaque context and a pair of callbacks, and moves bytes through them in
// whatever chunk sizes it likes. These adapters recover the *Buffer from
// the context and forward to its typed read/append primitives, keeping
// the protocol-shaped code confined to this boundary.
// ---------------------------------------------------------------------------

// ReadCallback is the pull-side signature the engine invokes while
// deserializing a closure. Any return in [0, len(dst)] is a valid byte
// count, short only at the very end of the available data; a negative
// value signals that no data remains.
type ReadCallback func(ctx any, dst []byte) int

// WriteCallback is the push-side signature the engine invokes while
// serializing a closure, returning the number of bytes accepted.
type WriteCallback func(ctx any, src []byte) int

// Reader adapts a Buffer to the engine's reader callback. The opaque
// context must be the *Buffer to read from; any other context yields
// NoData. The result of ReadData is returned unchanged.
func Reader(ctx any, dst []byte) int {
	b, ok := ctx.(*Buffer)
	if !ok {
		return NoData
	}
	return b.ReadData(dst)
}

// Writer adapts a Buffer to the engine's writer callback: bytes are
// appended as the engine produces them, so the final image size never
// needs to be known up front. The write always accepts the full chunk.
func Writer(ctx any, src []byte) int {
	b, ok := ctx.(*Buffer)
	if !ok {
		return NoData
	}
	return b.AppendData(src)
}
