package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Network holds every weight tensor for the four affine stages: the
// feature transformer (W0/B0) and three further hidden/output layers
// (W1/B1, W2/B2, W3/B3).
type Network struct {
	W0 [FeatureCount][NHidden0]int16
	B0 [NHidden0]int16

	// W1/W2/W3 are stored output-major (one contiguous row of input
	// weights per output neuron) so the hot inner product in Forward runs
	// over contiguous memory, matching the layout dotInt32Int8 expects.
	W1 [NHidden1][2 * NHidden0]int8
	B1 [NHidden1]int32

	W2 [NHidden2][NHidden1]int8
	B2 [NHidden2]int32

	W3 [NHidden2]int8
	B3 int32
}

// Forward runs the quantized affine stack for acc from stm's perspective
// (stm's half of the concatenated input comes first) and returns a
// centipawn score.
func (n *Network) Forward(acc *Accumulator, stm int) int32 {
	var input [2 * NHidden0]int32
	if stm == 0 {
		for i := 0; i < NHidden0; i++ {
			input[i] = int32(ClippedReLU(int32(acc.White[i]), ReLUMax0))
			input[NHidden0+i] = int32(ClippedReLU(int32(acc.Black[i]), ReLUMax0))
		}
	} else {
		for i := 0; i < NHidden0; i++ {
			input[i] = int32(ClippedReLU(int32(acc.Black[i]), ReLUMax0))
			input[NHidden0+i] = int32(ClippedReLU(int32(acc.White[i]), ReLUMax0))
		}
	}

	var h1 [NHidden1]int32
	for j := 0; j < NHidden1; j++ {
		sum := n.B1[j] + dotInt32Int8(input[:], n.W1[j][:])
		h1[j] = ClippedReLU(sum>>L1QuantShift, ReLUMax1)
	}

	var h2 [NHidden2]int32
	for j := 0; j < NHidden2; j++ {
		sum := n.B2[j] + dotInt32Int8(h1[:], n.W2[j][:])
		h2[j] = ClippedReLU(sum>>L2QuantShift, ReLUMax2)
	}

	out := n.B3 + dotInt32Int8(h2[:], n.W3[:])
	out >>= L3QuantShift

	return out * OutputScale / 1024
}

// Load reads a network from path. The file has no magic number or version
// header: tensors are read back to back in the fixed order W0, B0, W1, B1,
// W2, B2, W3, B3. A file shorter than expected, or with trailing bytes
// after B3, is rejected.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: open %s: %w", path, err)
	}
	defer f.Close()
	n, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("nnue: load %s: %w", path, err)
	}
	return n, nil
}

// LoadFromReader is Load's underlying reader-based implementation, split
// out for testing against an in-memory buffer.
func LoadFromReader(r io.Reader) (*Network, error) {
	n := &Network{}
	tensors := []struct {
		name string
		data any
	}{
		{"W0", &n.W0},
		{"B0", &n.B0},
		{"W1", &n.W1},
		{"B1", &n.B1},
		{"W2", &n.W2},
		{"B2", &n.B2},
		{"W3", &n.W3},
		{"B3", &n.B3},
	}
	for _, t := range tensors {
		if err := binary.Read(r, binary.LittleEndian, t.data); err != nil {
			return nil, fmt.Errorf("reading %s: %w", t.name, err)
		}
	}
	var trailing [1]byte
	if _, err := r.Read(trailing[:]); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing data after weight file")
	}
	return n, nil
}

// Save writes n back out in the same fixed tensor order Load expects.
func Save(path string, n *Network) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("nnue: create %s: %w", path, err)
	}
	defer f.Close()
	tensors := []any{&n.W0, &n.B0, &n.W1, &n.B1, &n.W2, &n.B2, &n.W3, &n.B3}
	for _, t := range tensors {
		if err := binary.Write(f, binary.LittleEndian, t); err != nil {
			return fmt.Errorf("nnue: write %s: %w", path, err)
		}
	}
	return nil
}
