package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/roomscan/internal/config"
	"github.com/banshee-data/roomscan/internal/db"
	"github.com/banshee-data/roomscan/internal/monitoring"
	"github.com/banshee-data/roomscan/internal/scene"
	"github.com/banshee-data/roomscan/internal/solver"
	"github.com/banshee-data/roomscan/internal/topology"
	"github.com/banshee-data/roomscan/internal/version"
)

var (
	configDir    = flag.String("config", "", "Directory holding roomscan.json")
	scenePath    = flag.String("scene", "", "Scene file (.json)")
	requestsPath = flag.String("requests", "", "Placement requests file (.json)")
	dbPath       = flag.String("db", "", "SQLite session database; empty disables persistence")
	seed         = flag.Int64("seed", 0, "Solver tie-break seed (0 uses the tuning value)")
	useJob       = flag.Bool("job", false, "Run the topology analysis as a background job")
	outPath      = flag.String("out", "", "Write results to this file instead of stdout")
	showVersion  = flag.Bool("version", false, "Print the version and exit")
)

// flagKeys maps command-line flags to RunConfig keys.
var flagKeys = map[string]string{
	"scene":    "scenePath",
	"requests": "requestsPath",
	"db":       "dbPath",
	"seed":     "seed",
	"job":      "useJob",
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.LoadRunConfig(*configDir)
	if err != nil {
		log.Fatalf("failed to load run config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "seed":
			cfg.Set(key, *seed)
		case "job":
			cfg.Set(key, *useJob)
		default:
			cfg.Set(key, f.Value.String())
		}
	})

	logger := monitoring.NewLogger(os.Stderr, cfg.LogLevel(), cfg.LogFormat())
	monitoring.SetLogger(monitoring.ZerologLogf(logger))
	if f := cfg.ConfigFile(); f != "" {
		logger.Info().Str("file", f).Msg("loaded run config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := run(ctx, cfg, out); err != nil {
		logger.Error().Err(err).Msg("roomscan failed")
		stop()
		os.Exit(1)
	}
}

// report is the JSON document written by run.
type report struct {
	SessionID string          `json:"session_id,omitempty"`
	Surfaces  int             `json:"surfaces"`
	Walls     int             `json:"walls"`
	Zones     int             `json:"zones"`
	Basins    []int           `json:"basins,omitempty"`
	Results   []solver.Result `json:"results"`
}

// run executes the whole pipeline: scene, board, filters, analysis,
// placement and persistence.
func run(ctx context.Context, cfg *config.RunConfig, out io.Writer) error {
	if cfg.ScenePath() == "" {
		return errors.New("a scene file is required")
	}

	tuning, err := loadTuning(cfg.TuningPath())
	if err != nil {
		return err
	}

	sc, err := scene.Load(cfg.ScenePath())
	if err != nil {
		return err
	}
	if sc.VoxelSize == 0 {
		sc.VoxelSize = tuning.GetVoxelSize()
	}
	rb, err := sc.Builder()
	if err != nil {
		return err
	}
	rb.ZoneLimits(tuning.GetZoneLimit(), tuning.GetZoneSurfelLimit())

	in, err := rb.Input()
	if err != nil {
		return err
	}
	rep := report{Zones: in.Board.ZoneCount()}
	rep.Basins = prepareBoard(&in, tuning)

	topo, err := analyze(ctx, in, topology.ConfigFromTuning(tuning), cfg.UseJob())
	if err != nil {
		return err
	}
	rep.Surfaces, rep.Walls = len(topo.Surfaces), len(topo.Walls)
	monitoring.Logf("analysed %d surfaces, %d walls, %d zones", rep.Surfaces, rep.Walls, rep.Zones)

	if cfg.RequestsPath() != "" {
		solverCfg := solver.ConfigFromTuning(tuning)
		if s := cfg.Seed(); s != 0 {
			solverCfg.Seed = s
		}
		sv := solver.New(topo, solverCfg, nil)
		sv.SetShapeProvider(rb.Shapes(topo))

		rep.Results, err = solveAll(sv, cfg.RequestsPath())
		if err != nil {
			return err
		}
	}

	if cfg.DBPath() != "" {
		id, err := persist(cfg.DBPath(), cfg.ScenePath(), sc.VoxelSize, &rep)
		if err != nil {
			return err
		}
		rep.SessionID = id
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	tuning, err := config.LoadTuningConfig(path)
	if errors.Is(err, os.ErrNotExist) && path == config.DefaultConfigPath {
		monitoring.Logf("warning: %s not found, using built-in tuning", path)
		return config.EmptyTuningConfig(), nil
	}
	return tuning, err
}

// prepareBoard locates the ground and ceiling zones, flags basins and runs
// the gameplay filter. Detected limits override the scene values in in.
func prepareBoard(in *topology.Input, tuning *config.TuningConfig) []int {
	b := in.Board
	b.ProximityDist = tuning.GetFilterProximityDist()

	var basins []int
	if ground, ok := b.SearchHorizontalLimit(false); ok {
		in.YGround = ground.Height
		basins = b.BasinFilter(ground.Zone)
		monitoring.Logf("ground zone %d at %.2f m (%d surfels), %d basins", ground.Zone, ground.Height, ground.Count, len(basins))
	}
	if ceiling, ok := b.SearchHorizontalLimit(true); ok {
		in.YCeiling = ceiling.Height
		monitoring.Logf("ceiling zone %d at %.2f m", ceiling.Zone, ceiling.Height)
	}
	b.FilterSurfel(tuning.GetFilterEyeHeight(), in.YGround, in.YCeiling)
	return basins
}

func analyze(ctx context.Context, in topology.Input, cfg topology.Config, background bool) (*topology.Topology, error) {
	if !background {
		return topology.Analyze(in, cfg)
	}
	job := topology.NewJob()
	if err := job.Start(ctx, in, cfg); err != nil {
		return nil, err
	}
	job.Wait()
	return job.Result()
}

func solveAll(sv *solver.Solver, path string) ([]solver.Result, error) {
	reqs, err := solver.LoadRequests(path)
	if err != nil {
		return nil, err
	}

	results := make([]solver.Result, 0, len(reqs))
	for i := range reqs {
		s, err := reqs[i].SolvingInfos()
		if err != nil {
			return nil, err
		}
		ok, err := sv.Solve(s)
		if err != nil {
			return nil, err
		}
		if !ok {
			monitoring.Logf("warning: no position for %q", s.Name)
		}
		results = append(results, solver.NewResult(s, ok))
	}
	return results, nil
}

// persist stores the session summary and every result, and returns the
// session id.
func persist(path, scenePath string, voxel float64, rep *report) (string, error) {
	store, err := db.OpenDB(path)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	sess := &db.Session{
		Scene:     scenePath,
		VoxelSize: voxel,
		Surfaces:  rep.Surfaces,
		Walls:     rep.Walls,
		Zones:     rep.Zones,
	}
	if err := store.CreateSession(sess); err != nil {
		return "", err
	}

	for i, r := range rep.Results {
		p := placementRow(sess.ID, i, r)
		if err := store.RecordPlacement(&p); err != nil {
			return "", err
		}
	}
	monitoring.Logf("stored session %s with %d placements", sess.ID, len(rep.Results))
	return sess.ID, nil
}

func placementRow(sessionID string, seq int, r solver.Result) db.Placement {
	p := db.Placement{
		SessionID:    sessionID,
		Seq:          seq,
		Name:         r.Name,
		PositionType: r.Type,
		Placed:       r.Placed,
		Universe:     r.Universe,
	}
	if r.Placed {
		p.Pos = [3]float64(r.Position)
		p.Size = [3]float64{2 * r.HalfDims[0], 2 * r.HalfDims[1], 2 * r.HalfDims[2]}
		p.Rot = r.Rotation
	}
	if len(r.Candidates) > 0 {
		score := r.Candidates[0].Score
		p.Score = &score
	}
	return p
}
