// Command arenabench drives a synthetic allocation workload against one
// arena and reports throughput, arena counters and process memory, so
// threshold changes can be compared on real numbers.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	sigar "github.com/cloudfoundry/gosigar"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/memkit/bestalloc/arena"
	"github.com/memkit/bestalloc/mem"
	"github.com/memkit/bestalloc/trace"
)

var (
	ops     = flag.Int("ops", 1_000_000, "operations per worker")
	workers = flag.Int("workers", 4, "concurrent workers")
	maxSize = flag.Int64("max-size", 4096, "largest request size in bytes")
	limit   = flag.Int64("limit", 0, "total raw-memory quota in bytes (0 = unlimited)")
	useMmap = flag.Bool("mmap", false, "draw raw memory from anonymous mappings")
	verbose = flag.Bool("verbose", false, "log every arena operation")
	seed    = flag.Int64("seed", 1, "workload seed")
)

func main() {
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	var prov mem.Provider
	if *useMmap {
		prov = mem.NewMmap()
	} else {
		prov = mem.NewHeap()
	}
	if *limit > 0 {
		prov = mem.NewCapped(prov, *limit)
	}

	var opts []arena.Option
	if *verbose {
		opts = append(opts, arena.WithTracer(trace.NewLogTracer(log)))
	}
	cfg := arena.DefaultConfig()
	cfg.Name = "bench"
	a := arena.New(cfg, prov, opts...)

	log.Info("starting workload",
		zap.Int("workers", *workers),
		zap.Int("ops", *ops),
		zap.Int64("max_size", *maxSize),
		zap.Bool("mmap", *useMmap),
	)

	start := time.Now()
	var wg sync.WaitGroup
	var failed sync.Once
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(*seed + int64(id)))
			var live []arena.Ref
			for i := 0; i < *ops; i++ {
				switch {
				case rng.Intn(2) == 0 || len(live) == 0:
					ref, _, err := a.Alloc(rng.Int63n(*maxSize))
					if err != nil {
						failed.Do(func() { log.Warn("allocation failed", zap.Error(err)) })
						if len(live) == 0 {
							return
						}
						continue
					}
					live = append(live, ref)
				default:
					j := rng.Intn(len(live))
					if err := a.Free(live[j]); err != nil {
						log.Fatal("free failed", zap.Error(err))
					}
					live[j] = live[len(live)-1]
					live = live[:len(live)-1]
				}
			}
			for _, ref := range live {
				if err := a.Free(ref); err != nil {
					log.Fatal("final free failed", zap.Error(err))
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := a.Check(); err != nil {
		log.Fatal("post-run consistency check failed", zap.Error(err))
	}
	if err := a.Compact(); err != nil {
		log.Fatal("compact failed", zap.Error(err))
	}

	st := a.Stats()
	total := st.AllocCalls + st.FreeCalls + st.ResizeCalls
	p := message.NewPrinter(language.English)
	p.Printf("%d ops in %v (%d ops/sec)\n",
		total, elapsed.Round(time.Millisecond),
		int64(float64(total)/elapsed.Seconds()))
	p.Printf("fast-path hits: %d, wilderness hits: %d, splits: %d, reclaims: %d\n",
		st.FastHits, st.WildHits, st.SplitCount, st.ReclaimRuns)
	fmt.Printf("arena: %s\n", st)
	fmt.Printf("grown %s, returned %s, extent now %s in %d segment(s)\n",
		humanize.IBytes(uint64(st.GrowBytes)),
		humanize.IBytes(uint64(st.ShrinkBytes)),
		humanize.IBytes(uint64(st.Extent)),
		st.Segments)

	pm := sigar.ProcMem{}
	if err := pm.Get(os.Getpid()); err == nil {
		fmt.Printf("process resident memory: %s\n", humanize.IBytes(pm.Resident))
	}
}
