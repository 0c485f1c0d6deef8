package prover

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/types"
)

// Executor runs registered programs and seals their journals.
type Executor struct {
	signer   *ethereum.SignKeys
	programs Programs
}

// NewExecutor returns an executor that seals with signer. If programs is nil,
// DefaultPrograms is used.
func NewExecutor(signer *ethereum.SignKeys, programs Programs) (*Executor, error) {
	if signer == nil || signer.Private.D == nil {
		return nil, fmt.Errorf("executor needs a private key")
	}
	if programs == nil {
		programs = DefaultPrograms()
	}
	return &Executor{signer: signer, programs: programs}, nil
}

// Address returns the address that verifiers must trust.
func (e *Executor) Address() common.Address {
	return e.signer.Address()
}

// Execute runs the program identified by imageID on input and returns the
// sealed journal. Program errors are wrapped with ErrExecution and keep their
// own error chain.
func (e *Executor) Execute(imageID common.Hash, input []byte) (*types.Fulfillment, error) {
	program, ok := e.programs[imageID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImage, imageID.Hex())
	}
	journal := &bytes.Buffer{}
	if err := program(bytes.NewReader(input), journal); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	seal, err := Seal(e.signer, imageID, journal.Bytes())
	if err != nil {
		return nil, fmt.Errorf("seal journal: %w", err)
	}
	log.Debugw("program executed", "imageId", imageID.Hex(), "inputSize", len(input), "journalSize", journal.Len())
	return &types.Fulfillment{
		ImageID: imageID,
		Journal: journal.Bytes(),
		Seal:    seal,
	}, nil
}
