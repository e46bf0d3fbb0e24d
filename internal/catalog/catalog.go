// Package catalog holds the static per-game difficulty tables: for each game
// an ascending list of difficulty breakpoints with a full settings record,
// plus the metadata the recommender plans with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"brainarcade/internal/model"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed games.yaml
var defaultCatalog []byte

// ErrUnknownGame is returned for a game id absent from the catalog.
var ErrUnknownGame = errors.New("unknown game")

// Breakpoint is one authored difficulty level.
type Breakpoint struct {
	Difficulty float64                `yaml:"difficulty" json:"difficulty" validate:"gte=0,lte=1"`
	Settings   map[string]interface{} `yaml:"settings" json:"settings" validate:"required,min=1"`
}

// Game is one mini-game's table and metadata.
type Game struct {
	ID               string       `yaml:"id" json:"id" validate:"required"`
	Name             string       `yaml:"name" json:"name"`
	Category         string       `yaml:"category" json:"category" validate:"required"`
	Skills           []string     `yaml:"skills" json:"skills"`
	EstimatedMinutes float64      `yaml:"estimated_minutes" json:"estimatedMinutes" validate:"gt=0"`
	EnergyLevel      model.Level  `yaml:"energy_level" json:"energyLevel" validate:"omitempty,oneof=low medium high"`
	IntegerFields    []string     `yaml:"integer_fields" json:"integerFields,omitempty"`
	Breakpoints      []Breakpoint `yaml:"breakpoints" json:"breakpoints" validate:"required,min=1,dive"`
}

type file struct {
	Version string `yaml:"version"`
	Games   []Game `yaml:"games"`
}

// Catalog is immutable after load and safe for concurrent reads.
type Catalog struct {
	version string
	games   map[string]*Game
	ids     []string
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path loads the default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Games) == 0 {
		return nil, errors.New("catalog has no games")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	c := &Catalog{version: f.Version, games: make(map[string]*Game, len(f.Games))}
	for i := range f.Games {
		g := f.Games[i]
		if err := v.Struct(g); err != nil {
			return nil, fmt.Errorf("game %d (%q): %w", i, g.ID, err)
		}
		if _, dup := c.games[g.ID]; dup {
			return nil, fmt.Errorf("duplicate game id %q", g.ID)
		}
		if err := normalize(&g); err != nil {
			return nil, fmt.Errorf("game %q: %w", g.ID, err)
		}
		c.games[g.ID] = &g
		c.ids = append(c.ids, g.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// normalize checks breakpoint order and converts every value to float64,
// string or bool.
func normalize(g *Game) error {
	for i, bp := range g.Breakpoints {
		if i > 0 && bp.Difficulty <= g.Breakpoints[i-1].Difficulty {
			return fmt.Errorf("breakpoints not strictly ascending at %v", bp.Difficulty)
		}
		for k, raw := range bp.Settings {
			v, err := normalizeValue(raw)
			if err != nil {
				return fmt.Errorf("breakpoint %v field %q: %w", bp.Difficulty, k, err)
			}
			bp.Settings[k] = v
		}
	}
	return nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case string, bool:
		return x, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Version is the authored catalog version.
func (c *Catalog) Version() string { return c.version }

// Game returns a deep copy of the game's metadata and table.
func (c *Catalog) Game(id string) (Game, bool) {
	g, ok := c.games[id]
	if !ok {
		return Game{}, false
	}
	return g.clone(), true
}

// Games returns deep copies of all games ordered by id.
func (c *Catalog) Games() []Game {
	out := make([]Game, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.games[id].clone())
	}
	return out
}

func (g *Game) clone() Game {
	out := *g
	out.Skills = append([]string(nil), g.Skills...)
	out.IntegerFields = append([]string(nil), g.IntegerFields...)
	out.Breakpoints = make([]Breakpoint, len(g.Breakpoints))
	for i, bp := range g.Breakpoints {
		out.Breakpoints[i] = Breakpoint{Difficulty: bp.Difficulty, Settings: copySettings(bp.Settings)}
	}
	return out
}

// GenerateSettings maps a normalized difficulty onto the game's concrete settings.
// Numeric fields interpolate linearly between the surrounding breakpoints;
// categorical fields take the nearer side. Difficulties outside the authored
// range clamp to the boundary record.
func (c *Catalog) GenerateSettings(gameID string, difficulty float64) (model.Settings, error) {
	g, ok := c.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	return g.Interpolate(difficulty), nil
}

// Interpolate is GenerateSettings for a single game.
func (g *Game) Interpolate(difficulty float64) model.Settings {
	lo, hi := g.bounds(difficulty)
	lower, upper := g.Breakpoints[lo], g.Breakpoints[hi]
	if lo == hi {
		return copySettings(lower.Settings)
	}

	ratio := (difficulty - lower.Difficulty) / (upper.Difficulty - lower.Difficulty)
	out := make(model.Settings, len(lower.Settings))
	for k, lv := range lower.Settings {
		uv, ok := upper.Settings[k]
		if !ok {
			out[k] = lv
			continue
		}
		lf, lnum := lv.(float64)
		uf, unum := uv.(float64)
		switch {
		case lnum && unum:
			v := lf + (uf-lf)*ratio
			if g.isInteger(k) {
				v = math.Round(v)
			}
			out[k] = v
		case ratio > 0.5:
			out[k] = uv
		default:
			out[k] = lv
		}
	}
	for k, uv := range upper.Settings {
		if _, ok := out[k]; !ok {
			out[k] = uv
		}
	}
	return out
}

// bounds returns the indexes of the nearest breakpoint <= d and >= d.
func (g *Game) bounds(d float64) (lo, hi int) {
	n := len(g.Breakpoints)
	hi = sort.Search(n, func(i int) bool { return g.Breakpoints[i].Difficulty >= d })
	if hi == n {
		return n - 1, n - 1
	}
	if g.Breakpoints[hi].Difficulty == d || hi == 0 {
		return hi, hi
	}
	return hi - 1, hi
}

func (g *Game) isInteger(field string) bool {
	for _, f := range g.IntegerFields {
		if f == field {
			return true
		}
	}
	return false
}

// MinDifficulty and MaxDifficulty are the authored range.
func (g *Game) MinDifficulty() float64 { return g.Breakpoints[0].Difficulty }

func (g *Game) MaxDifficulty() float64 { return g.Breakpoints[len(g.Breakpoints)-1].Difficulty }

func copySettings(in map[string]interface{}) model.Settings {
	out := make(model.Settings, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
