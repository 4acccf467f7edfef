package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/fsutil"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/grid"
	"github.com/banshee-data/ledpanel/internal/panel"
	"github.com/banshee-data/ledpanel/internal/units"
)

// DefaultConfigPath is the path to the canonical layout defaults file.
const DefaultConfigPath = "config/layout.defaults.json"

// DefaultSpacing is the pixel pitch of the reference LED strip: 26 pixels
// over 1.409 units.
const DefaultSpacing = 1.409 / 26

const maxFileSize = 1 * 1024 * 1024 // 1MB

// GridSettings holds the grid parameters shared by the run and by
// per-panel overrides. JSON cannot encode an infinite gradient, so
// grid_angle_deg may be given instead: 90 is an orthogonal grid.
type GridSettings struct {
	Spacing           *float64 `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	SpacingVertical   *float64 `json:"spacing_vertical,omitempty" yaml:"spacing_vertical,omitempty"`
	GridGradient      *float64 `json:"grid_gradient,omitempty" yaml:"grid_gradient,omitempty"`
	GridAngleDeg      *float64 `json:"grid_angle_deg,omitempty" yaml:"grid_angle_deg,omitempty"`
	Margin            *float64 `json:"margin,omitempty" yaml:"margin,omitempty"`
	MarginVerticalTop *float64 `json:"margin_vertical_top,omitempty" yaml:"margin_vertical_top,omitempty"`
	MarginLeft        *float64 `json:"margin_left,omitempty" yaml:"margin_left,omitempty"`
	MarginRight       *float64 `json:"margin_right,omitempty" yaml:"margin_right,omitempty"`
	ZOffset           *float64 `json:"z_offset,omitempty" yaml:"z_offset,omitempty"`
	WiringSerpentine  *bool    `json:"wiring_serpentine,omitempty" yaml:"wiring_serpentine,omitempty"`
	WiringReverse     *bool    `json:"wiring_reverse,omitempty" yaml:"wiring_reverse,omitempty"`
}

// OverrideConfig adjusts a single panel, keyed by panel name.
type OverrideConfig struct {
	// Grid fields set here replace the run-level values for this panel.
	Grid       *GridSettings     `json:"grid,omitempty" yaml:"grid,omitempty"`
	GridOrigin []float64         `json:"grid_origin,omitempty" yaml:"grid_origin,omitempty"` // [x, y, z]
	GridMatrix [][]float64       `json:"grid_matrix,omitempty" yaml:"grid_matrix,omitempty"` // 4x4 row-major
	Pixels     [][]int           `json:"pixels,omitempty" yaml:"pixels,omitempty"`           // [[col, row], ...]
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// LayoutConfig is the root configuration for a layout run.
type LayoutConfig struct {
	GridSettings `yaml:",inline"`

	VertexRotation *int     `json:"vertex_rotation,omitempty" yaml:"vertex_rotation,omitempty"`
	ATOL           *float64 `json:"atol,omitempty" yaml:"atol,omitempty"`
	Workers        *int     `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Units is the length unit of spacing, margins and z_offset. MeshUnits
	// is the unit the mesh was exported in; grid_origin and grid_matrix
	// overrides are always in mesh units.
	Units     *string `json:"units,omitempty" yaml:"units,omitempty"`
	MeshUnits *string `json:"mesh_units,omitempty" yaml:"mesh_units,omitempty"`

	Overrides map[string]OverrideConfig `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyLayoutConfig returns a LayoutConfig with all fields set to nil.
func EmptyLayoutConfig() *LayoutConfig {
	return &LayoutConfig{}
}

// LoadLayoutConfig loads a LayoutConfig from a .json, .yaml or .yml file on
// fsys. Fields omitted from the file fall back to the Get* defaults.
func LoadLayoutConfig(fsys fsutil.FileSystem, path string) (*LayoutConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	data, err := fsutil.ReadLimited(fsys, cleanPath, maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg := EmptyLayoutConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *LayoutConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadLayoutConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid, including the
// grid each panel override resolves to.
func (c *LayoutConfig) Validate() error {
	if c.ATOL != nil && (!(*c.ATOL > 0) || math.IsInf(*c.ATOL, 0)) {
		return fmt.Errorf("atol must be positive and finite, got %g", *c.ATOL)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if !units.IsValid(c.GetUnits()) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), c.GetUnits())
	}
	if !units.IsValid(c.GetMeshUnits()) {
		return fmt.Errorf("mesh_units must be one of %s, got %q", units.GetValidUnitsString(), c.GetMeshUnits())
	}
	if err := c.GridSettings.validate(c.GetATOL()); err != nil {
		return err
	}
	for name, o := range c.Overrides {
		if err := c.merged(o.Grid).validate(c.GetATOL()); err != nil {
			return fmt.Errorf("override %q: %w", name, err)
		}
		if _, err := o.panelOverride(nil); err != nil {
			return fmt.Errorf("override %q: %w", name, err)
		}
	}
	return nil
}

func (g GridSettings) validate(atol float64) error {
	if g.GridGradient != nil && g.GridAngleDeg != nil {
		return fmt.Errorf("grid_gradient and grid_angle_deg are mutually exclusive")
	}
	if g.GridAngleDeg != nil && !(*g.GridAngleDeg > 0 && *g.GridAngleDeg < 180) {
		return fmt.Errorf("grid_angle_deg must be in (0, 180), got %g", *g.GridAngleDeg)
	}
	return g.GridConfig(geom.Tolerance(atol)).Validate()
}

// merged returns the run-level settings with any fields set in over
// taking precedence.
func (c *LayoutConfig) merged(over *GridSettings) GridSettings {
	g := c.GridSettings
	if over == nil {
		return g
	}
	if over.GridGradient != nil || over.GridAngleDeg != nil {
		g.GridGradient, g.GridAngleDeg = over.GridGradient, over.GridAngleDeg
	}
	g.Spacing = pick(over.Spacing, g.Spacing)
	g.SpacingVertical = pick(over.SpacingVertical, g.SpacingVertical)
	g.Margin = pick(over.Margin, g.Margin)
	g.MarginVerticalTop = pick(over.MarginVerticalTop, g.MarginVerticalTop)
	g.MarginLeft = pick(over.MarginLeft, g.MarginLeft)
	g.MarginRight = pick(over.MarginRight, g.MarginRight)
	g.ZOffset = pick(over.ZOffset, g.ZOffset)
	g.WiringSerpentine = pick(over.WiringSerpentine, g.WiringSerpentine)
	g.WiringReverse = pick(over.WiringReverse, g.WiringReverse)
	return g
}

func pick[T any](over, base *T) *T {
	if over != nil {
		return over
	}
	return base
}

// GridConfig resolves the settings into a grid.Config.
func (g GridSettings) GridConfig(tol geom.Tolerance) grid.Config {
	return grid.Config{
		Spacing:           g.GetSpacing(),
		SpacingVertical:   g.SpacingVertical,
		GridGradient:      g.GetGridGradient(),
		Margin:            g.GetMargin(),
		MarginVerticalTop: g.MarginVerticalTop,
		MarginLeft:        g.MarginLeft,
		MarginRight:       g.MarginRight,
		ZOffset:           g.GetZOffset(),
		WiringSerpentine:  g.GetWiringSerpentine(),
		WiringReverse:     g.GetWiringReverse(),
		Tolerance:         tol,
	}
}

// PanelOptions resolves the configuration into options for panel.Process.
func (c *LayoutConfig) PanelOptions() (panel.Options, error) {
	tol := geom.Tolerance(c.GetATOL())
	k := c.LengthScale()
	opts := panel.Options{
		Grid:           scaleLengths(c.GridSettings.GridConfig(tol), k),
		VertexRotation: c.GetVertexRotation(),
	}
	if len(c.Overrides) == 0 {
		return opts, nil
	}
	opts.Overrides = make(map[string]panel.PanelOverride, len(c.Overrides))
	for name, o := range c.Overrides {
		var gc *grid.Config
		if o.Grid != nil {
			resolved := scaleLengths(c.merged(o.Grid).GridConfig(tol), k)
			gc = &resolved
		}
		po, err := o.panelOverride(gc)
		if err != nil {
			return panel.Options{}, fmt.Errorf("override %q: %w", name, err)
		}
		opts.Overrides[name] = po
	}
	return opts, nil
}

// LengthScale is the factor converting config lengths to mesh units.
func (c *LayoutConfig) LengthScale() float64 {
	return units.ConvertLength(1, c.GetUnits(), c.GetMeshUnits())
}

func scaleLengths(gc grid.Config, k float64) grid.Config {
	if k == 1 {
		return gc
	}
	scale := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		return ptrFloat64(*v * k)
	}
	gc.Spacing *= k
	gc.SpacingVertical = scale(gc.SpacingVertical)
	gc.Margin *= k
	gc.MarginVerticalTop = scale(gc.MarginVerticalTop)
	gc.MarginLeft = scale(gc.MarginLeft)
	gc.MarginRight = scale(gc.MarginRight)
	gc.ZOffset *= k
	return gc
}

func (o OverrideConfig) panelOverride(gc *grid.Config) (panel.PanelOverride, error) {
	po := panel.PanelOverride{Grid: gc, Metadata: o.Metadata}
	if o.GridOrigin != nil {
		if len(o.GridOrigin) != 3 {
			return po, fmt.Errorf("grid_origin must have 3 components, got %d", len(o.GridOrigin))
		}
		origin := r3.Vec{X: o.GridOrigin[0], Y: o.GridOrigin[1], Z: o.GridOrigin[2]}
		po.GridOrigin = &origin
	}
	if o.GridMatrix != nil {
		var rows [4][4]float64
		if len(o.GridMatrix) != 4 {
			return po, fmt.Errorf("grid_matrix must have 4 rows, got %d", len(o.GridMatrix))
		}
		for i, row := range o.GridMatrix {
			if len(row) != 4 {
				return po, fmt.Errorf("grid_matrix row %d must have 4 columns, got %d", i, len(row))
			}
			copy(rows[i][:], row)
		}
		m := affine.FromRows(rows)
		po.GridMatrix = &m
	}
	if o.Pixels != nil {
		pairs := make([][2]int, len(o.Pixels))
		for i, p := range o.Pixels {
			if len(p) != 2 {
				return po, fmt.Errorf("pixel %d must be a [col, row] pair, got %d values", i, len(p))
			}
			pairs[i] = [2]int{p[0], p[1]}
		}
		po.PixelSequence = grid.FromPairs(pairs)
	}
	return po, nil
}

// GetSpacing returns the spacing value or the default.
func (g GridSettings) GetSpacing() float64 {
	if g.Spacing == nil {
		return DefaultSpacing // default
	}
	return *g.Spacing
}

// GetGridGradient returns the grid gradient, derived from grid_angle_deg
// when that is set instead.
func (g GridSettings) GetGridGradient() float64 {
	if g.GridGradient != nil {
		return *g.GridGradient
	}
	if g.GridAngleDeg != nil {
		return gradientFromAngle(*g.GridAngleDeg)
	}
	return math.Inf(1) // default: orthogonal grid
}

func gradientFromAngle(deg float64) float64 {
	if geom.IsClose(math.Mod(deg, 180), 90) {
		return math.Inf(1)
	}
	return math.Tan(deg * math.Pi / 180)
}

// GetMargin returns the margin value or the default.
func (g GridSettings) GetMargin() float64 {
	if g.Margin == nil {
		return 0 // default
	}
	return *g.Margin
}

// GetZOffset returns the z_offset value or the default.
func (g GridSettings) GetZOffset() float64 {
	if g.ZOffset == nil {
		return -0.01 // default
	}
	return *g.ZOffset
}

// GetWiringSerpentine returns the wiring_serpentine value or the default.
func (g GridSettings) GetWiringSerpentine() bool {
	if g.WiringSerpentine == nil {
		return true // default
	}
	return *g.WiringSerpentine
}

// GetWiringReverse returns the wiring_reverse value or the default.
func (g GridSettings) GetWiringReverse() bool {
	if g.WiringReverse == nil {
		return false // default
	}
	return *g.WiringReverse
}

// GetVertexRotation returns the vertex_rotation value or the default.
func (c *LayoutConfig) GetVertexRotation() int {
	if c.VertexRotation == nil {
		return 0 // default
	}
	return *c.VertexRotation
}

// GetATOL returns the absolute tolerance or the default.
func (c *LayoutConfig) GetATOL() float64 {
	if c.ATOL == nil {
		return geom.ATOL // default
	}
	return *c.ATOL
}

// GetWorkers returns the worker count, defaulting to one per CPU.
func (c *LayoutConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU() // default
	}
	return *c.Workers
}

// GetUnits returns the config length unit or the default.
func (c *LayoutConfig) GetUnits() string {
	if c.Units == nil {
		return units.M // default
	}
	return *c.Units
}

// GetMeshUnits returns the mesh length unit or the default.
func (c *LayoutConfig) GetMeshUnits() string {
	if c.MeshUnits == nil {
		return units.M // default
	}
	return *c.MeshUnits
}
