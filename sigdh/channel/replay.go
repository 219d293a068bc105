package channel

// Sliding anti-replay window in the style of RFC 6479: a ring of 64-bit
// blocks, cleared lazily as the highest counter advances.
const (
	blockBits    = 64
	blockBitsLog = 6
	windowBits   = 2048
	numBlocks    = windowBits / blockBits

	// ReplayWindow is how far behind the highest counter a record may
	// arrive and still be accepted.
	ReplayWindow = uint64(windowBits - blockBits)
)

type replayWindow struct {
	highest uint64
	blocks  [numBlocks]uint64
}

// check records index and reports whether it is new and inside the window.
func (w *replayWindow) check(index uint64) bool {
	if index+ReplayWindow < w.highest {
		return false
	}
	indexBlock := index >> blockBitsLog
	if index > w.highest {
		top := w.highest >> blockBitsLog
		advance := min(indexBlock-top, numBlocks)
		for i := uint64(1); i <= advance; i++ {
			w.blocks[(top+i)%numBlocks] = 0
		}
		w.highest = index
	}
	indexBlock %= numBlocks
	bit := uint64(1) << (index & (blockBits - 1))
	old := w.blocks[indexBlock]
	w.blocks[indexBlock] = old | bit
	return old&bit == 0
}

func (w *replayWindow) reset() {
	*w = replayWindow{}
}
