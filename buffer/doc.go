// Package buffer carries compiled script images between the engine's
// closure serialization hooks, the filesystem, and in-memory transfer.
//
// The engine serializes a compiled closure by pushing chunks of bytes
// through a writer callback and deserializes one by pulling chunks back
// through a reader callback. Buffer is the byte carrier behind both hooks:
// an owned, dynamically grown, contiguous store with a separate read
// cursor, with no knowledge of the structure of the bytes it holds.
//
// Typical producer path:
//
//	buf := buffer.New()
//	engine.WriteClosure(buffer.Writer, buf) // engine pushes via AppendData
//	err := buf.SaveToFile("app.img")
//
// Typical consumer path:
//
//	buf := buffer.New()
//	err := buf.LoadFromFile("app.img")
//	engine.ReadClosure(buffer.Reader, buf) // engine pulls via ReadData
//
// Buffer also implements io.Reader and io.Writer so the store and wire
// layers can treat an image as an ordinary byte stream.
package buffer
