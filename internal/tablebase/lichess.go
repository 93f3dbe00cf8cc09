package tablebase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RenWild/marvin-chess/internal/board"
)

// LichessProber queries the Lichess online tablebase, which covers all
// positions with up to seven pieces. Latency makes it unsuitable for the
// search hot path on its own; wrap it in a CachedProber.
type LichessProber struct {
	client  *http.Client
	baseURL string
}

// NewLichessProber creates an online prober with a short request timeout.
func NewLichessProber() *LichessProber {
	return &LichessProber{
		client:  &http.Client{Timeout: 3 * time.Second},
		baseURL: "https://tablebase.lichess.ovh/standard",
	}
}

type lichessReply struct {
	Category string `json:"category"`
	DTZ      int    `json:"dtz"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
	} `json:"moves"`
}

func (lp *LichessProber) query(pos *board.Position) (*lichessReply, error) {
	fen := strings.ReplaceAll(pos.FEN(), " ", "_")
	resp, err := lp.client.Get(fmt.Sprintf("%s?fen=%s", lp.baseURL, fen))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tablebase server status %s", resp.Status)
	}
	var reply lichessReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// categoryWDL maps a Lichess category to a WDL value. Anything the
// fifty-move rule can spoil counts as a draw.
func categoryWDL(category string) WDL {
	switch category {
	case "win":
		return Win
	case "loss":
		return Loss
	default:
		return Draw
	}
}

func (lp *LichessProber) ProbeWDL(pos *board.Position) (WDL, bool) {
	if pos.All.Count() > lp.MaxPieces() {
		return Draw, false
	}
	reply, err := lp.query(pos)
	if err != nil {
		return Draw, false
	}
	return categoryWDL(reply.Category), true
}

func (lp *LichessProber) ProbeRoot(pos *board.Position) (board.Move, WDL, bool) {
	if pos.All.Count() > lp.MaxPieces() {
		return board.NoMove, Draw, false
	}
	reply, err := lp.query(pos)
	if err != nil || len(reply.Moves) == 0 {
		return board.NoMove, Draw, false
	}

	// Moves are ordered best first from the probing side's view.
	m, err := pos.ParseMove(reply.Moves[0].UCI)
	if err != nil {
		return board.NoMove, Draw, false
	}
	return m, categoryWDL(reply.Category), true
}

func (lp *LichessProber) MaxPieces() int {
	return 7
}

func (lp *LichessProber) Available() bool {
	return true
}
