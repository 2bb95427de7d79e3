package io

// Buffer is an in-memory channel. Reads consume queued values from In;
// writes append to Out. Hosts use it to feed READ input ahead of time
// and capture WRITE output without touching real streams.
type Buffer struct {
	In  []int32 // Values queued for reading.
	Out []int32 // Values written so far.

	ReadIndex int // Position of the next read in In.
}

var _ Channel = (*Buffer)(nil)

// Rewind restarts reading from the head of In and discards Out.
func (buf *Buffer) Rewind() {
	buf.ReadIndex = 0
	buf.Out = buf.Out[:0]
}

// ReadInt consumes the next queued value.
func (buf *Buffer) ReadInt() (value int32, err error) {
	if buf.ReadIndex >= len(buf.In) {
		err = ErrInputEmpty
		return
	}
	value = buf.In[buf.ReadIndex]
	buf.ReadIndex += 1
	return
}

// WriteInt appends a value to Out.
func (buf *Buffer) WriteInt(value int32) (err error) {
	buf.Out = append(buf.Out, value)
	return
}

// Feed appends values to the read queue.
func (buf *Buffer) Feed(values ...int32) {
	buf.In = append(buf.In, values...)
}

// Pending returns the values queued but not yet read.
func (buf *Buffer) Pending() []int32 {
	return buf.In[min(buf.ReadIndex, len(buf.In)):]
}
