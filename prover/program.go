package prover

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/tally"
)

// Program reads its private input from r and writes its public journal to w.
// A program must not write anything to w when it fails.
type Program func(r io.Reader, w io.Writer) error

// Programs maps image ids to the programs they identify.
type Programs map[common.Hash]Program

// DefaultPrograms returns the programs known by every prover.
func DefaultPrograms() Programs {
	return Programs{tally.ImageID: tally.Run}
}
