package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/RenWild/marvin-chess/internal/book"
	"github.com/RenWild/marvin-chess/internal/engine"
	"github.com/RenWild/marvin-chess/internal/uci"
)

var (
	hashMB     = flag.Int("hash", 64, "transposition table size in MB")
	threads    = flag.Int("threads", runtime.NumCPU(), "number of search threads")
	bookFile   = flag.String("book", "", "Polyglot opening book file")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("cpu profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("cpu profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.New(engine.Options{HashMB: *hashMB, Threads: *threads})
	driver := uci.New(eng)

	if *bookFile != "" {
		b, err := book.Load(*bookFile)
		if err != nil {
			log.Printf("book %s not loaded: %v", *bookFile, err)
		} else {
			driver.SetBook(b)
		}
	}

	driver.Run()
}
