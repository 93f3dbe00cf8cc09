package board

// Zobrist keys for position hashing. A fixed-seed xorshift generator keeps
// the keys reproducible across runs.

var (
	zobristPiece    [12][64]uint64
	zobristCastling [16]uint64
	zobristEpFile   [8]uint64
	zobristSide     uint64
)

type xorshift struct {
	state uint64
}

func (x *xorshift) next() uint64 {
	x.state ^= x.state >> 12
	x.state ^= x.state << 25
	x.state ^= x.state >> 27
	return x.state * 0x2545F4914F6CDD1D
}

func init() {
	rng := xorshift{state: 0x1F3A9C4D8E7B6012}
	for p := 0; p < 12; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rng.next()
		}
	}
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	for f := 0; f < 8; f++ {
		zobristEpFile[f] = rng.next()
	}
	zobristSide = rng.next()
}
