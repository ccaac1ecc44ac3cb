// Command memdex exercises the tree from the command line: a worked demo of
// the core operations, a load generator for eyeballing throughput and memory,
// and a structural self-check over a randomized workload.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"

	"memdex"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "memdex",
		Usage:   "in-memory ordered index playground",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable debug logging",
			EnvVars: []string{"MEMDEX_VERBOSE"},
		},
	}

	app.Before = func(cctx *cli.Context) error {
		level := slog.LevelInfo
		if cctx.Bool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
		return nil
	}

	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "demo",
			Usage:  "walk through insert, find, range, and erase on a small tree",
			Action: runDemo,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "order",
					Usage: "tree fan-out bound",
					Value: 4,
				},
			},
		},
		&cli.Command{
			Name:   "bench",
			Usage:  "load the tree and report wall times and memory",
			Action: runBench,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"n"},
					Usage:   "number of entries to load",
					Value:   1_000_000,
				},
				&cli.IntFlag{
					Name:  "order",
					Usage: "tree fan-out bound",
					Value: 64,
				},
				&cli.StringFlag{
					Name:  "keys",
					Usage: "key type to generate: string or int",
					Value: "string",
				},
				&cli.Uint64Flag{
					Name:  "cache",
					Usage: "find-cache slots, 0 to disable",
					Value: 0,
				},
				&cli.Int64Flag{
					Name:  "seed",
					Usage: "seed for the workload generator",
					Value: 42,
				},
			},
		},
		&cli.Command{
			Name:   "check",
			Usage:  "run a randomized workload and verify every structural invariant",
			Action: runCheck,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "count",
					Aliases: []string{"n"},
					Usage:   "number of operations to apply",
					Value:   200_000,
				},
				&cli.IntFlag{
					Name:  "order",
					Usage: "tree fan-out bound",
					Value: 5,
				},
				&cli.Int64Flag{
					Name:  "seed",
					Usage: "seed for the workload generator",
					Value: 42,
				},
			},
		},
	}

	return app.Run(args)
}

// measure returns a closure that logs wall time for count operations when
// invoked.
func measure(name string, count int) func() {
	start := time.Now()
	return func() {
		total := time.Since(start)
		slog.Info(name,
			"count", count,
			"total", total.Round(time.Millisecond).String(),
			"per_op", (total / time.Duration(count)).String())
	}
}

func runDemo(cctx *cli.Context) error {
	tree, err := memdex.New[int, int](cctx.Int("order"),
		memdex.WithLogger[int, int](slog.Default()))
	if err != nil {
		return err
	}

	fmt.Printf("tree of order %d\n\n", tree.Order())

	for key := 1; key <= 24; key++ {
		tree.Insert(key, key*10)
	}
	s := tree.Stats()
	fmt.Printf("inserted keys 1..24 (value = key*10): %d entries, height %d, %d leaves, %d internal nodes\n",
		s.Entries, s.Height, s.Leaves, s.Internal)

	fmt.Printf("range [3, 12]: %v\n\n", tree.Range(3, 12))

	for _, key := range []int{0, 1, 2, 3, 4, 5, 6, 16, 17, 18} {
		fmt.Printf("erase %2d: %v\n", key, tree.Erase(key))
	}

	s = tree.Stats()
	fmt.Printf("\nafter erasing: %d entries, height %d, %d leaves\n", s.Entries, s.Height, s.Leaves)
	fmt.Printf("range [0, 29]: %v\n", tree.Range(0, 29))

	if err := tree.Check(); err != nil {
		return fmt.Errorf("structural check failed: %w", err)
	}
	fmt.Println("\nstructural check passed")
	return nil
}

func runBench(cctx *cli.Context) error {
	switch keys := cctx.String("keys"); keys {
	case "string":
		return benchStrings(cctx)
	case "int":
		return benchInts(cctx)
	default:
		return fmt.Errorf("unknown key type %q (want string or int)", keys)
	}
}

func benchStrings(cctx *cli.Context) error {
	count := cctx.Int("count")
	seed := cctx.Int64("seed")

	opts := []memdex.Option[string, string]{
		memdex.WithLogger[string, string](slog.Default()),
	}
	if slots := cctx.Uint64("cache"); slots > 0 {
		opts = append(opts, memdex.WithFindCache[string, string](uint32(slots), memdex.HashString))
	}
	tree, err := memdex.New[string, string](cctx.Int("order"), opts...)
	if err != nil {
		return err
	}

	slog.Debug("generating keys", "count", count, "seed", seed)
	faker := gofakeit.New(seed)
	keys := make([]string, count)
	values := make([]string, count)
	for i := range keys {
		keys[i] = fmt.Sprintf("%s-%08d", faker.Username(), i)
		values[i] = faker.Email()
	}

	done := measure("insert", count)
	for i, key := range keys {
		tree.Insert(key, values[i])
	}
	done()

	rng := rand.New(rand.NewSource(seed))
	done = measure("find", count)
	for i := 0; i < count; i++ {
		key := keys[rng.Intn(count)]
		if _, ok := tree.Find(key); !ok {
			return fmt.Errorf("lost key %q", key)
		}
	}
	done()

	done = measure("erase", count/2)
	for _, key := range keys[:count/2] {
		if !tree.Erase(key) {
			return fmt.Errorf("failed to erase key %q", key)
		}
	}
	done()

	report(tree.Stats())
	return nil
}

func benchInts(cctx *cli.Context) error {
	count := cctx.Int("count")
	seed := cctx.Int64("seed")

	opts := []memdex.Option[int, int]{
		memdex.WithLogger[int, int](slog.Default()),
	}
	if slots := cctx.Uint64("cache"); slots > 0 {
		opts = append(opts, memdex.WithFindCache[int, int](uint32(slots), memdex.HashInt))
	}
	tree, err := memdex.New[int, int](cctx.Int("order"), opts...)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	keys := rng.Perm(count)

	done := measure("insert", count)
	for _, key := range keys {
		tree.Insert(key, key)
	}
	done()

	done = measure("find", count)
	for i := 0; i < count; i++ {
		key := rng.Intn(count)
		if _, ok := tree.Find(key); !ok {
			return fmt.Errorf("lost key %d", key)
		}
	}
	done()

	done = measure("range", 1000)
	width := count / 100
	for i := 0; i < 1000; i++ {
		lo := rng.Intn(count - width)
		tree.Range(lo, lo+width)
	}
	done()

	done = measure("erase", count/2)
	for _, key := range keys[:count/2] {
		if !tree.Erase(key) {
			return fmt.Errorf("failed to erase key %d", key)
		}
	}
	done()

	report(tree.Stats())
	return nil
}

func report(s memdex.Stats) {
	slog.Info("tree",
		"entries", s.Entries,
		"height", s.Height,
		"leaves", s.Leaves,
		"internal", s.Internal)
	if s.Cache.Hits+s.Cache.Misses > 0 {
		total := s.Cache.Hits + s.Cache.Misses
		slog.Info("find cache",
			"hits", s.Cache.Hits,
			"misses", s.Cache.Misses,
			"hit_rate", fmt.Sprintf("%.1f%%", 100*float64(s.Cache.Hits)/float64(total)),
			"evictions", s.Cache.Evictions,
			"resident", s.Cache.Len)
	}
	if rss := maxRSS(); rss > 0 {
		slog.Info("memory", "max_rss_mb", rss/(1<<20))
	}
}

func runCheck(cctx *cli.Context) error {
	count := cctx.Int("count")
	seed := cctx.Int64("seed")

	tree, err := memdex.New[int, int](cctx.Int("order"),
		memdex.WithLogger[int, int](slog.Default()))
	if err != nil {
		return err
	}

	slog.Debug("applying workload", "ops", count, "seed", seed)
	rng := rand.New(rand.NewSource(seed))
	keySpace := count / 4
	if keySpace < 16 {
		keySpace = 16
	}

	done := measure("workload", count)
	for i := 0; i < count; i++ {
		key := rng.Intn(keySpace)
		if rng.Intn(3) < 2 {
			tree.Insert(key, key)
		} else {
			tree.Erase(key)
		}
	}
	done()

	if err := tree.Check(); err != nil {
		return fmt.Errorf("structural check failed after %d ops: %w", count, err)
	}

	report(tree.Stats())
	fmt.Printf("ok: %d entries, every invariant holds\n", tree.Len())
	return nil
}
