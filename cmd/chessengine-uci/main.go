package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hailam/chessengine/internal/config"
	"github.com/hailam/chessengine/internal/nnue"
	"github.com/hailam/chessengine/internal/search"
	"github.com/hailam/chessengine/internal/uci"
)

const defaultNetName = "network.nnue"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	store, err := config.OpenStore()
	if err != nil {
		log.Printf("warning: settings store unavailable: %v (using defaults)", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	opts := config.DefaultOptions()
	if store != nil {
		opts = store.Load()
	}

	eng := search.NewEngine(opts.HashMB)

	path, explicit, err := resolveEvalFile(opts.EvalFile)
	if err != nil {
		if explicit {
			log.Fatalf("EvalFile %q could not be found", opts.EvalFile)
		}
		log.Printf("warning: NNUE not loaded: %v (using material evaluation)", err)
	} else {
		net, loadErr := nnue.Load(path)
		if loadErr != nil {
			if explicit {
				log.Fatalf("EvalFile %q failed to load: %v", path, loadErr)
			}
			log.Printf("warning: NNUE not loaded: %v (using material evaluation)", loadErr)
		} else {
			eng.SetEvaluator(nnue.NewEvaluator(net))
			opts.EvalFile = path
			log.Printf("NNUE loaded from %s", path)
		}
	}

	protocol := uci.New(eng, opts, store)
	protocol.Run()
}

// resolveEvalFile returns the file to load. If configured is non-empty, the
// user explicitly set EvalFile (via setoption or a persisted store) and the
// returned explicit flag is true: the caller must treat a failure to find or
// load that path as fatal rather than silently falling back. With configured
// empty, it probes the engine's per-user data directory and the current
// directory for the default network file name and a miss is not fatal.
func resolveEvalFile(configured string) (path string, explicit bool, err error) {
	if configured != "" {
		if fileExists(configured) {
			return configured, true, nil
		}
		return "", true, os.ErrNotExist
	}

	var searchPaths []string
	if dataDir, derr := config.DataDir(); derr == nil {
		searchPaths = append(searchPaths, filepath.Join(dataDir, defaultNetName))
	}
	searchPaths = append(searchPaths, filepath.Join(".", defaultNetName))

	for _, p := range searchPaths {
		if fileExists(p) {
			return p, false, nil
		}
	}
	return "", false, os.ErrNotExist
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
