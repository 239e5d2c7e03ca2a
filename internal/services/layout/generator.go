package layout

import (
	"log/slog"

	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/invisiblewalls/internal/dependencies/random"
	"github.com/mcoot/invisiblewalls/internal/model"
)

// Config holds the tunables of layout generation
type Config struct {
	// HazardDensity is the fraction of the board covered by hazards per difficulty
	HazardDensity map[model.Difficulty]float64

	// StrictAttempts bounds whole-layout retries under the fairness constraints
	StrictAttempts int
	// RelaxedAttempts bounds whole-layout retries once constraints are dropped
	RelaxedAttempts int
	// PlacementRetries bounds the distance-constrained door and key picks
	PlacementRetries int
}

// DefaultConfig returns the standard generation tunables
func DefaultConfig() Config {
	return Config{
		HazardDensity: map[model.Difficulty]float64{
			model.DifficultyMedium: 0.60,
			model.DifficultyHard:   0.75,
		},
		StrictAttempts:   500,
		RelaxedAttempts:  50,
		PlacementRetries: 50,
	}
}

// Generator produces boards whose door and keys are always reachable from the start
type Generator struct {
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// New creates a new layout Generator
func New(rnd random.Random, cfg Config, logger *slog.Logger) *Generator {
	if cfg.HazardDensity == nil {
		cfg.HazardDensity = DefaultConfig().HazardDensity
	}
	return &Generator{
		random: rnd,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "layout-generator")),
	}
}

// Generate returns a playable layout. It tries the fair constraints first,
// then relaxed constraints, and finally falls back to a fixed layout, so it
// always returns.
func (g *Generator) Generate(size int, difficulty model.Difficulty, keysRequired int) model.Layout {
	if size < model.MinGridSize {
		size = model.MinGridSize
	}
	if keysRequired < 0 {
		keysRequired = 0
	}

	if l, ok := g.generate(size, difficulty, keysRequired, true); ok {
		return l
	}
	g.logger.Warn("strict layout generation exhausted, relaxing constraints",
		slog.Int("size", size),
		slog.String("difficulty", string(difficulty)),
		slog.Int("keys", keysRequired),
	)

	if l, ok := g.generate(size, difficulty, keysRequired, false); ok {
		return l
	}
	g.logger.Error("relaxed layout generation exhausted, using fallback layout",
		slog.Int("size", size),
		slog.String("difficulty", string(difficulty)),
		slog.Int("keys", keysRequired),
	)

	return Fallback(size, keysRequired)
}

// HazardTarget is the number of hazards a board of this size aims for
func (g *Generator) HazardTarget(size int, difficulty model.Difficulty) int {
	density, ok := g.cfg.HazardDensity[difficulty]
	if !ok {
		density = g.cfg.HazardDensity[model.DefaultDifficulty]
	}
	return int(float64(size*size) * density)
}

func (g *Generator) generate(size int, difficulty model.Difficulty, keysRequired int, strict bool) (model.Layout, bool) {
	attempts := g.cfg.RelaxedAttempts
	if strict {
		attempts = g.cfg.StrictAttempts
	}

	for i := 0; i < attempts; i++ {
		l, ok := g.attempt(size, difficulty, keysRequired, strict)
		if ok && IsValidLayout(size, l) {
			return l, true
		}
	}
	return model.Layout{}, false
}

// attempt builds one candidate layout; it reports false when placement fails
func (g *Generator) attempt(size int, difficulty model.Difficulty, keysRequired int, strict bool) (model.Layout, bool) {
	used := mapset.New[model.Position]()

	start := g.randomCell(size)
	used.Put(start)

	var door model.Position
	var ok bool
	if strict {
		door, ok = g.pickDistant(size, used, func(p model.Position) bool {
			return p.Manhattan(start) >= doorDistance(size)
		})
	} else {
		door, ok = g.pickFree(size, used)
	}
	if !ok {
		return model.Layout{}, false
	}
	used.Put(door)

	keys := make([]model.Position, 0, keysRequired)
	for k := 0; k < keysRequired; k++ {
		var key model.Position
		if strict {
			key, ok = g.pickDistant(size, used, func(p model.Position) bool {
				return p.Manhattan(start) >= keyDistance(size) && p.Manhattan(door) >= keyDistance(size)
			})
		} else {
			key, ok = g.pickFree(size, used)
		}
		if !ok {
			return model.Layout{}, false
		}
		used.Put(key)
		keys = append(keys, key)
	}

	hazards := g.guardDoor(size, door, used, strict)
	for _, h := range hazards {
		used.Put(h)
	}

	remaining := g.HazardTarget(size, difficulty) - len(hazards)
	if remaining > 0 {
		free := freeCells(size, used)
		random.Shuffle(g.random, len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
		if remaining > len(free) {
			remaining = len(free)
		}
		hazards = append(hazards, free[:remaining]...)
	}

	return model.Layout{
		StartPos: start,
		DoorPos:  door,
		KeyPos:   keys,
		Hazards:  hazards,
	}, true
}

// guardDoor blocks the approaches to the door. Strict mode leaves exactly
// one neighbour open; relaxed mode blocks zero or one.
func (g *Generator) guardDoor(size int, door model.Position, used mapset.Set[model.Position], strict bool) []model.Position {
	var candidates []model.Position
	for _, n := range door.Neighbors(size) {
		if !used.Has(n) {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	random.Shuffle(g.random, len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	count := len(candidates) - 1
	if !strict {
		count = g.random.Intn(2)
		if count > len(candidates) {
			count = len(candidates)
		}
	}
	return append([]model.Position{}, candidates[:count]...)
}

func (g *Generator) randomCell(size int) model.Position {
	return model.Position{X: g.random.Intn(size), Y: g.random.Intn(size)}
}

// pickDistant samples random cells until one is unused and satisfies accept
func (g *Generator) pickDistant(size int, used mapset.Set[model.Position], accept func(model.Position) bool) (model.Position, bool) {
	for i := 0; i < g.cfg.PlacementRetries; i++ {
		p := g.randomCell(size)
		if !used.Has(p) && accept(p) {
			return p, true
		}
	}
	return model.Position{}, false
}

// pickFree returns a uniformly chosen unused cell, failing only on a full board
func (g *Generator) pickFree(size int, used mapset.Set[model.Position]) (model.Position, bool) {
	free := freeCells(size, used)
	if len(free) == 0 {
		return model.Position{}, false
	}
	return free[g.random.Intn(len(free))], true
}

// freeCells lists unused cells in row-major order
func freeCells(size int, used mapset.Set[model.Position]) []model.Position {
	free := make([]model.Position, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := model.Position{X: x, Y: y}
			if !used.Has(p) {
				free = append(free, p)
			}
		}
	}
	return free
}

// doorDistance is floor(size / 1.5)
func doorDistance(size int) int {
	return size * 2 / 3
}

func keyDistance(size int) int {
	return size / 2
}
