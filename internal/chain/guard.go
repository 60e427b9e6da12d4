package chain

import "errors"

var ErrReentrancy = errors.New("reentrancy detected")

// Guard is a non-blocking entry latch. Execution is single-threaded, so a
// busy guard means the caller re-entered a protected operation from inside
// itself; that must fail fast, not block.
type Guard struct {
	busy bool
}

func (g *Guard) Enter() error {
	if g.busy {
		return ErrReentrancy
	}
	g.busy = true

	return nil
}

func (g *Guard) Exit() {
	g.busy = false
}
