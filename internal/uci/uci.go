// Package uci implements the UCI protocol on top of the engine facade.
// The engine reports raw numbers; all formatting lives here.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RenWild/marvin-chess/internal/board"
	"github.com/RenWild/marvin-chess/internal/book"
	"github.com/RenWild/marvin-chess/internal/engine"
	"github.com/RenWild/marvin-chess/internal/tablebase"
)

const (
	engineName   = "Marvin"
	engineAuthor = "Martin Danielsson"
)

// UCI is the protocol driver. It owns the game position and replays the
// move history into it so the engine sees repetitions across the game.
type UCI struct {
	engine *engine.Engine
	pos    *board.Position

	book    *book.Book
	ownBook bool

	tbCache *tablebase.CachedProber

	searchDone chan struct{}
}

// New creates a driver around the given engine.
func New(eng *engine.Engine) *UCI {
	u := &UCI{
		engine: eng,
		pos:    board.NewPosition(),
	}
	eng.OnInfo(u.sendInfo)
	return u
}

// SetBook installs an opening book.
func (u *UCI) SetBook(b *book.Book) {
	u.book = b
	u.ownBook = b != nil
}

// Run reads commands until quit or EOF. A search runs in its own
// goroutine; commands arriving mid-search are handled immediately, which
// is how stop and ponderhit reach the workers.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.identify()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.waitSearch()
			u.engine.NewGame()
			u.pos = board.NewPosition()
		case "setoption":
			u.setOption(args)
		case "position":
			u.waitSearch()
			u.setPosition(args)
		case "go":
			u.waitSearch()
			u.handleGo(args)
		case "stop":
			u.engine.Stop(false)
			u.waitSearch()
		case "ponderhit":
			u.engine.PonderHit()
		case "d":
			fmt.Println(u.pos)
		case "quit":
			u.engine.Stop(true)
			u.waitSearch()
			if u.tbCache != nil {
				u.tbCache.Close()
			}
			return
		}
	}
}

func (u *UCI) identify() {
	fmt.Printf("id name %s\n", engineName)
	fmt.Printf("id author %s\n", engineAuthor)
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 65536")
	fmt.Println("option name Threads type spin default 1 min 1 max 64")
	fmt.Println("option name Ponder type check default false")
	fmt.Println("option name OwnBook type check default false")
	fmt.Println("option name BookFile type string default <empty>")
	fmt.Println("option name OnlineTablebase type check default false")
	fmt.Println("uciok")
}

func (u *UCI) setOption(args []string) {
	name, value := parseOption(args)
	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil {
			u.engine.SetHash(mb)
		}
	case "threads":
		if n, err := strconv.Atoi(value); err == nil {
			u.engine.SetThreads(n)
		}
	case "ownbook":
		u.ownBook = value == "true" && u.book != nil
	case "bookfile":
		b, err := book.Load(value)
		if err != nil {
			fmt.Printf("info string book %s not loaded: %v\n", value, err)
			return
		}
		u.book = b
		u.ownBook = true
	case "onlinetablebase":
		if value == "true" {
			dir := filepath.Join(os.TempDir(), "marvin-tbcache")
			u.tbCache = tablebase.NewCachedProber(tablebase.NewLichessProber(), dir)
			u.engine.SetTablebase(u.tbCache)
		} else {
			u.engine.SetTablebase(tablebase.None{})
		}
	}
}

func parseOption(args []string) (name, value string) {
	var names, values []string
	target := &names
	for _, a := range args {
		switch a {
		case "name":
			target = &names
		case "value":
			target = &values
		default:
			*target = append(*target, a)
		}
	}
	return strings.Join(names, " "), strings.Join(values, " ")
}

func (u *UCI) setPosition(args []string) {
	if len(args) == 0 {
		return
	}

	moveIdx := len(args)
	for i, a := range args {
		if a == "moves" {
			moveIdx = i
			break
		}
	}

	var pos *board.Position
	var err error
	if args[0] == "startpos" {
		pos = board.NewPosition()
	} else if args[0] == "fen" {
		pos, err = board.ParseFEN(strings.Join(args[1:moveIdx], " "))
		if err != nil {
			fmt.Printf("info string %v\n", err)
			return
		}
	} else {
		return
	}

	for i := moveIdx + 1; i < len(args); i++ {
		m, err := pos.ParseMove(args[i])
		if err != nil {
			fmt.Printf("info string %v\n", err)
			return
		}
		pos.MakeMove(m)
	}
	u.pos = pos
}

func (u *UCI) handleGo(args []string) {
	var limits engine.Limits

	for i := 0; i < len(args); i++ {
		value := func() time.Duration {
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					return time.Duration(n) * time.Millisecond
				}
			}
			return 0
		}
		switch args[i] {
		case "wtime":
			limits.Time[board.White] = value()
		case "btime":
			limits.Time[board.Black] = value()
		case "winc":
			limits.Inc[board.White] = value()
		case "binc":
			limits.Inc[board.Black] = value()
		case "movestogo":
			i++
			if i < len(args) {
				limits.MovesToGo, _ = strconv.Atoi(args[i])
			}
		case "depth":
			i++
			if i < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i])
			}
		case "movetime":
			limits.MoveTime = value()
		case "infinite":
			limits.Infinite = true
		case "ponder":
			limits.Ponder = true
		case "searchmoves":
			for i+1 < len(args) {
				m, err := u.pos.ParseMove(args[i+1])
				if err != nil {
					break
				}
				limits.SearchMoves = append(limits.SearchMoves, m)
				i++
			}
		}
	}

	// The book answers before the search starts, outside the core.
	if u.ownBook && !limits.Infinite && !limits.Ponder {
		if m, ok := u.book.Probe(u.pos); ok {
			fmt.Printf("bestmove %s\n", m)
			return
		}
	}

	u.searchDone = make(chan struct{})
	go func(pos *board.Position, limits engine.Limits) {
		defer close(u.searchDone)

		best, err := u.engine.Search(pos, limits)
		if err != nil {
			fmt.Printf("info string %v\n", err)
			fmt.Println("bestmove 0000")
			return
		}
		if ponder := u.engine.PonderMove(); ponder != board.NoMove {
			fmt.Printf("bestmove %s ponder %s\n", best, ponder)
		} else {
			fmt.Printf("bestmove %s\n", best)
		}
	}(u.pos.Copy(), limits)
}

func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		u.engine.Stop(false)
		<-u.searchDone
		u.searchDone = nil
	}
}

func (u *UCI) sendInfo(info engine.SearchInfo) {
	var score string
	if engine.IsMateScore(info.Score) {
		score = fmt.Sprintf("mate %d", engine.MateDistance(info.Score))
	} else {
		score = fmt.Sprintf("cp %d", info.Score)
	}

	ms := info.Elapsed.Milliseconds()
	nps := uint64(0)
	if ms > 0 {
		nps = info.Nodes * 1000 / uint64(ms)
	}

	var pv strings.Builder
	for _, m := range info.PV {
		pv.WriteByte(' ')
		pv.WriteString(m.String())
	}

	fmt.Printf("info depth %d seldepth %d score %s nodes %d nps %d hashfull %d time %d pv%s\n",
		info.Depth, info.Seldepth, score, info.Nodes, nps, info.HashFull, ms, pv.String())
}
