// Package uci implements the engine's text protocol front end: a UCI-like
// command loop that owns the root position and repetition history and
// drives one internal/search.Engine.
package uci

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hailam/chessengine/internal/board"
	"github.com/hailam/chessengine/internal/config"
	"github.com/hailam/chessengine/internal/nnue"
	"github.com/hailam/chessengine/internal/search"
)

// UCI implements the engine's text-protocol command loop.
type UCI struct {
	engine   *search.Engine
	position *board.Position
	history  []uint64

	opts  config.EngineOptions
	store *config.Store

	halt       atomic.Bool
	searching  bool
	searchDone chan struct{}
	outMu      sync.Mutex

	ponderWG     sync.WaitGroup
	ponderHalt   atomic.Bool
	pondering    bool
}

// New creates a protocol handler around eng, seeded with opts (typically
// loaded from a config.Store by the caller).
func New(eng *search.Engine, opts config.EngineOptions, store *config.Store) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		opts:     opts,
		store:    store,
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "ponderhit":
			u.handleStop()
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			u.waitSearch()
			return
		case "setoption":
			u.handleSetOption(args)
		case "d":
			u.waitSearch()
			u.println(u.position.String())
		default:
			log.Printf("uci: unrecognized command %q", cmd)
		}
	}
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Println(s)
}

func (u *UCI) handleUCI() {
	u.println("id name ChessEngine")
	u.println("id author ChessEngine Contributors")
	for _, d := range config.Descriptors() {
		switch d.Type {
		case "spin":
			u.println(fmt.Sprintf("option name %s type spin default %s min %d max %d", d.Name, d.Default, d.Min, d.Max))
		case "check":
			u.println(fmt.Sprintf("option name %s type check default %s", d.Name, d.Default))
		case "string":
			v := d.Default
			if v == "" {
				v = "<empty>"
			}
			u.println(fmt.Sprintf("option name %s type string default %s", d.Name, v))
		}
	}
	u.println("uciok")
}

func (u *UCI) handleSetOption(args []string) {
	name, value, ok := parseSetOption(args)
	if !ok {
		log.Printf("uci: malformed setoption: %v", args)
		return
	}
	newOpts, err := config.ParseOption(u.opts, name, value)
	if err != nil {
		u.println(fmt.Sprintf("info string %v", err))
		return
	}
	u.opts = newOpts
	u.applyOption(name)
	if u.store != nil {
		if err := u.store.Save(u.opts); err != nil {
			log.Printf("uci: persist options: %v", err)
		}
	}
}

// parseSetOption extracts name/value from "setoption name <N...> value <V...>".
func parseSetOption(args []string) (name, value string, ok bool) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", false
	}
	i := 1
	var nameParts, valueParts []string
	for i < len(args) && args[i] != "value" {
		nameParts = append(nameParts, args[i])
		i++
	}
	if i < len(args) && args[i] == "value" {
		valueParts = args[i+1:]
	}
	if len(nameParts) == 0 {
		return "", "", false
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " "), true
}

func (u *UCI) applyOption(name string) {
	switch strings.ToLower(name) {
	case "hash":
		u.engine.TT.Resize(u.opts.HashMB)
	case "evalfile":
		net, err := nnue.Load(u.opts.EvalFile)
		if err != nil {
			log.Printf("uci: load EvalFile %q: %v", u.opts.EvalFile, err)
			return
		}
		u.engine.SetEvaluator(nnue.NewEvaluator(net))
	}
}

func (u *UCI) handleNewGame() {
	u.waitSearch()
	u.engine.Reset()
	u.position = board.NewPosition()
	u.history = []uint64{u.position.Hash}
}

func (u *UCI) handlePosition(args []string) {
	u.waitSearch()
	if len(args) == 0 {
		return
	}

	var moveStart int
	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = 1
	case "fen":
		end := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				end = i
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(args[1:end], " "))
		if err != nil {
			u.println(fmt.Sprintf("info string invalid FEN: %v", err))
			return
		}
		u.position = pos
		moveStart = end
	default:
		return
	}

	for i := moveStart; i < len(args); i++ {
		if args[i] == "moves" {
			moveStart = i + 1
			break
		}
	}

	u.history = []uint64{u.position.Hash}
	for _, ms := range args[moveStart:] {
		m, err := board.ParseMove(ms, u.position)
		if err != nil || !u.position.IsLegal(m) {
			u.println(fmt.Sprintf("info string invalid move: %s", ms))
			return
		}
		u.position.MakeMove(m)
		u.position.UpdateCheckers()
		u.history = append(u.history, u.position.Hash)
	}
}

type goOptions struct {
	depth              int
	nodes              int64
	moveTimeMS         int
	infinite           bool
	wtime, btime       int
	winc, binc         int
	movesToGo          int
	ponder             bool
}

func parseGoOptions(args []string) goOptions {
	var o goOptions
	atoi := func(s string) int { n, _ := strconv.Atoi(s); return n }
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			i++
			if i < len(args) {
				o.depth = atoi(args[i])
			}
		case "nodes":
			i++
			if i < len(args) {
				n, _ := strconv.ParseInt(args[i], 10, 64)
				o.nodes = n
			}
		case "movetime":
			i++
			if i < len(args) {
				o.moveTimeMS = atoi(args[i])
			}
		case "infinite":
			o.infinite = true
		case "ponder":
			o.ponder = true
		case "wtime":
			i++
			if i < len(args) {
				o.wtime = atoi(args[i])
			}
		case "btime":
			i++
			if i < len(args) {
				o.btime = atoi(args[i])
			}
		case "winc":
			i++
			if i < len(args) {
				o.winc = atoi(args[i])
			}
		case "binc":
			i++
			if i < len(args) {
				o.binc = atoi(args[i])
			}
		case "movestogo":
			i++
			if i < len(args) {
				o.movesToGo = atoi(args[i])
			}
		}
	}
	return o
}

func (u *UCI) toLimits(o goOptions) search.Limits {
	return search.Limits{
		WTime:        o.wtime,
		BTime:        o.btime,
		WInc:         o.winc,
		BInc:         o.binc,
		MovesToGo:    o.movesToGo,
		MoveTime:     o.moveTimeMS,
		Depth:        o.depth,
		Nodes:        o.nodes,
		// A "go ponder" search runs with no time bound until "ponderhit" or
		// "stop" arrives, same as "go infinite".
		Infinite:     o.infinite || o.ponder,
		MoveOverhead: u.opts.MoveOverhead,
		SoftNodes:    u.opts.SoftNodes,
		SoftHardMult: u.opts.SoftHardMult,
	}
}

func (u *UCI) handleGo(args []string) {
	u.waitSearch()
	o := parseGoOptions(args)
	limits := u.toLimits(o)

	u.engine.SetPosition(u.position, u.history)
	u.engine.SetOnInfo(u.sendInfo)

	u.halt.Store(false)
	u.searching = true
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)
		result := u.engine.GetMove(limits, &u.halt)
		u.searching = false
		move := result.Move
		if move == board.NoMove || !u.position.IsLegal(move) {
			legal := u.position.GenerateLegalMoves()
			if legal.Len() > 0 {
				move = legal.Get(0)
			} else {
				u.println("bestmove 0000")
				return
			}
		}
		u.println(fmt.Sprintf("bestmove %s", move))
		u.startPonder()
	}()
}

// startPonder spawns a background search from the position the engine
// predicts its opponent will reach, following the TT's own stored best
// move. It runs until the next waitSearch call halts and joins it, which
// happens at the top of every command that is about to touch the engine's
// position or start a fresh search.
func (u *UCI) startPonder() {
	if u.position == nil {
		return
	}
	u.ponderHalt.Store(false)
	u.pondering = true
	u.ponderWG.Add(1)
	go func() {
		defer u.ponderWG.Done()
		u.engine.Ponder(&u.ponderHalt)
	}()
}

func (u *UCI) handleStop() {
	u.halt.Store(true)
	u.ponderHalt.Store(true)
}

func (u *UCI) waitSearch() {
	if u.searching && u.searchDone != nil {
		u.halt.Store(true)
		<-u.searchDone
	}
	if u.pondering {
		u.ponderHalt.Store(true)
		u.ponderWG.Wait()
		u.pondering = false
	}
}

func (u *UCI) sendInfo(depth, score int, isMate bool, nodes int64, elapsedMS int64, pv []board.Move, hashFull int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", depth)
	if isMate {
		mateIn := (search.MateScore - abs(score) + 1) / 2
		if score < 0 {
			mateIn = -mateIn
		}
		fmt.Fprintf(&sb, " score mate %d", mateIn)
	} else {
		fmt.Fprintf(&sb, " score cp %d", score)
	}
	fmt.Fprintf(&sb, " nodes %d time %d hashfull %d", nodes, elapsedMS, hashFull)
	if elapsedMS > 0 {
		nps := nodes * 1000 / elapsedMS
		fmt.Fprintf(&sb, " nps %d", nps)
	}
	if len(pv) > 0 {
		sb.WriteString(" pv")
		for _, m := range pv {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	u.println(sb.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
