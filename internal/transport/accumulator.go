package transport

import "bytes"

// Accumulator reassembles a response body from the pieces a transport
// delivers. Chunked and non-chunked deliveries are treated the same.
// It is not safe for concurrent use; the Bridge serialises access.
type Accumulator struct {
	buf bytes.Buffer
}

// Write appends p. The chunked flag only describes how the transport framed
// the bytes and does not change the result.
func (a *Accumulator) Write(p []byte, chunked bool) {
	a.buf.Write(p)
}

// Len reports how many bytes have been accumulated.
func (a *Accumulator) Len() int {
	return a.buf.Len()
}

// Finish hands the accumulated body to the caller and resets the
// accumulator. The returned slice is never nil, so an empty body can be told
// apart from no body at all.
func (a *Accumulator) Finish() []byte {
	body := make([]byte, a.buf.Len())
	copy(body, a.buf.Bytes())
	a.Abandon()
	return body
}

// Abandon drops everything accumulated so far and releases the buffer.
func (a *Accumulator) Abandon() {
	a.buf = bytes.Buffer{}
}
