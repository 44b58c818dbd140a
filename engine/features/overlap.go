package features

// OverlapBuffer assembles an arbitrary-chunked sample stream into
// hop-spaced full analysis blocks. With hop = block/2 this yields the
// 50% overlap the extractor expects. Single-writer: it is only ever
// touched from the audio-input context.
//
// The internal buffer is allocated once; Feed never allocates.
type OverlapBuffer struct {
	block []float64
	hop   int
	fill  int
}

// NewOverlapBuffer creates a buffer producing blockSize-sample blocks
// every hopSize samples
func NewOverlapBuffer(blockSize, hopSize int) *OverlapBuffer {
	return &OverlapBuffer{
		block: make([]float64, blockSize),
		hop:   hopSize,
	}
}

// Feed appends samples and invokes emit for every completed block.
// The emitted slice is the internal buffer: consumers must finish
// with it before Feed returns (the extractor copies what it keeps).
func (ob *OverlapBuffer) Feed(samples []float64, emit func(block []float64)) {
	for len(samples) > 0 {
		n := copy(ob.block[ob.fill:], samples)
		ob.fill += n
		samples = samples[n:]

		if ob.fill == len(ob.block) {
			emit(ob.block)

			// Slide the window forward by one hop
			copy(ob.block, ob.block[ob.hop:])
			ob.fill = len(ob.block) - ob.hop
		}
	}
}

// Reset discards buffered samples
func (ob *OverlapBuffer) Reset() {
	ob.fill = 0
}
