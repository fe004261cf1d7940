package ski

import "fmt"

// memoState is the lifecycle of a memo cell.
//
//	Unsure ──► Normal(term)
//	   │
//	   └─────► Abnormal
//
// A cell is Unsure while the frame that created it is still reducing. When
// that frame reaches a verdict the cell moves to Normal or Abnormal; when it
// gives up (budget exhausted or undecided) the cell is removed again, so an
// Unsure cell never outlives the frame that owns it.
type memoState uint8

const (
	memoUnsure memoState = iota
	memoNormal
	memoAbnormal
)

// String returns a human-readable representation of the state.
func (s memoState) String() string {
	switch s {
	case memoUnsure:
		return "Unsure"
	case memoNormal:
		return "Normal"
	case memoAbnormal:
		return "Abnormal"
	default:
		return fmt.Sprintf("memoState(%d)", uint8(s))
	}
}

type memoCell struct {
	state memoState

	// nf is the normal form of a Normal cell and nfKey its encoding.
	nf    Term
	nfKey string

	// level is the speculation depth the Unsure cell was created at.
	level int
}

// memo maps canonical encodings to cells.
type memo struct {
	cells map[string]memoCell
}

func newMemo() *memo {
	return &memo{cells: make(map[string]memoCell)}
}

func (m *memo) lookup(key string) (memoCell, bool) {
	c, ok := m.cells[key]
	return c, ok
}

func (m *memo) markUnsure(key string, level int) {
	m.cells[key] = memoCell{state: memoUnsure, level: level}
}

// settle overwrites every key with the frame's verdict.
func (m *memo) settle(keys []string, cell memoCell) {
	for _, k := range keys {
		m.cells[k] = cell
	}
}

func (m *memo) forget(keys []string) {
	for _, k := range keys {
		delete(m.cells, k)
	}
}

func (m *memo) len() int { return len(m.cells) }

func (m *memo) clear() {
	m.cells = make(map[string]memoCell)
}
