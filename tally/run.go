package tally

import (
	"fmt"
	"io"
)

// Run is the entry point of the tally program. It reads the encoded witness
// from r until EOF, computes the tally and writes the encoded public output
// to w. Nothing is written to w unless the whole computation succeeds.
func Run(r io.Reader, w io.Writer) error {
	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read witness: %w", err)
	}
	journal, err := Execute(input)
	if err != nil {
		return err
	}
	if _, err := w.Write(journal); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// Execute decodes an encoded witness, tallies it and returns the journal.
func Execute(input []byte) ([]byte, error) {
	witness, err := DecodeWitness(input)
	if err != nil {
		return nil, err
	}
	output, err := Tally(witness)
	if err != nil {
		return nil, err
	}
	return EncodeOutput(output)
}
