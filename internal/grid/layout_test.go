package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/ledpanel/internal/affine"
	"github.com/banshee-data/ledpanel/internal/geom"
	"github.com/banshee-data/ledpanel/internal/testutil"
)

func lightsOf(pairs ...[2]int) LightGrid {
	return FromPairs(pairs)
}

func withZ(cfg Config, z float64) Config {
	cfg.ZOffset = z
	return cfg
}

func TestAxisCenteredLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                  string
		length, spacing       float64
		near, far             float64
		wantLines             int
		wantPadding, wantNear float64
	}{
		{"exact fit", 1, 0.5, 0, 0, 3, 0, 0},
		{"centred", 20, 5, 3, 3, 3, 2, 5},
		{"uneven margins", 20, 5, 1, 4, 4, 0, 1},
		{"snaps near integer", 1.00001, 0.5, 0, 0, 3, 0.000005, 0.000005},
		{"too small", 1, 0.5, 0.6, 0.6, 0, 0.15, 0.75},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lines, padding, err := AxisCenteredLines(tt.length, tt.spacing, tt.near, tt.far, geom.Default)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLines, lines)
			assert.InDelta(t, tt.wantPadding, padding, 1e-9)
			assert.InDelta(t, tt.wantNear, tt.near+padding, 1e-9)
		})
	}
}

func TestGenerateLights_Reference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		base, rightX, rightH float64
		leftX, leftH         float64
		cfg                  Config
		wantTranslation      r3.Vec
		wantRows, wantCols   int
		wantLights           LightGrid
	}{
		{
			name: "square", base: 1, rightX: 1, rightH: 1, leftX: 0, leftH: 1,
			cfg:             DefaultConfig(0.5),
			wantTranslation: r3.Vec{},
			wantRows:        3, wantCols: 3,
			wantLights: lightsOf(
				[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0},
				[2]int{2, 1}, [2]int{1, 1}, [2]int{0, 1},
				[2]int{0, 2}, [2]int{1, 2}, [2]int{2, 2}),
		},
		{
			name: "right triangle", base: 1.1, rightX: 0, rightH: 2.2, leftX: 0, leftH: 2.2,
			cfg:             withZ(DefaultConfig(0.5), 0.15),
			wantTranslation: r3.Vec{X: 0.025, Y: 0.1, Z: 0.15},
			wantRows:        5, wantCols: 3,
			wantLights: lightsOf(
				[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0},
				[2]int{1, 1}, [2]int{0, 1},
				[2]int{0, 2}, [2]int{1, 2},
				[2]int{0, 3},
				[2]int{0, 4}),
		},
		{
			name: "flipped right triangle", base: 1.1, rightX: 1.1, rightH: 2.2, leftX: 1.1, leftH: 2.2,
			cfg:             withZ(DefaultConfig(0.5), 0.15),
			wantTranslation: r3.Vec{X: 0.075, Y: 0.1, Z: 0.15},
			wantRows:        5, wantCols: 3,
			wantLights: lightsOf(
				[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0},
				[2]int{2, 1}, [2]int{1, 1},
				[2]int{1, 2}, [2]int{2, 2},
				[2]int{2, 3},
				[2]int{2, 4}),
		},
		{
			name: "isosceles", base: 3.3, rightX: 1.65, rightH: 2.2, leftX: 1.65, leftH: 2.2,
			cfg:             withZ(DefaultConfig(0.5), 0.15),
			wantTranslation: r3.Vec{X: 0.15, Y: 0.1, Z: 0.15},
			wantRows:        5, wantCols: 7,
			wantLights: lightsOf(
				[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{3, 0}, [2]int{4, 0}, [2]int{5, 0}, [2]int{6, 0},
				[2]int{5, 1}, [2]int{4, 1}, [2]int{3, 1}, [2]int{2, 1}, [2]int{1, 1},
				[2]int{2, 2}, [2]int{3, 2}, [2]int{4, 2},
				[2]int{3, 3},
				[2]int{3, 4}),
		},
		{
			name: "rectangle", base: 1.1, rightX: 1.1, rightH: 2.2, leftX: 0, leftH: 2.2,
			cfg:             withZ(DefaultConfig(0.5), 0.15),
			wantTranslation: r3.Vec{X: 0.05, Y: 0.1, Z: 0.15},
			wantRows:        5, wantCols: 3,
			wantLights: lightsOf(
				[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0},
				[2]int{2, 1}, [2]int{1, 1}, [2]int{0, 1},
				[2]int{0, 2}, [2]int{1, 2}, [2]int{2, 2},
				[2]int{2, 3}, [2]int{1, 3}, [2]int{0, 3},
				[2]int{0, 4}, [2]int{1, 4}, [2]int{2, 4}),
		},
		{
			name: "flipped right triangle with margin", base: 1.1, rightX: 1.1, rightH: 2.2, leftX: 1.1, leftH: 2.2,
			cfg: func() Config {
				cfg := withZ(DefaultConfig(0.2), 0.15)
				cfg.Margin = 0.1
				return cfg
			}(),
			wantTranslation: r3.Vec{X: 0.19045084971874743, Y: 0.13819660112501045, Z: 0.15},
			wantRows:        9, wantCols: 5,
			wantLights: lightsOf(
				[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{3, 0}, [2]int{4, 0},
				[2]int{4, 1}, [2]int{3, 1}, [2]int{2, 1}, [2]int{1, 1},
				[2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2}, [2]int{4, 2},
				[2]int{4, 3}, [2]int{3, 3}, [2]int{2, 3},
				[2]int{2, 4}, [2]int{3, 4}, [2]int{4, 4},
				[2]int{4, 5}, [2]int{3, 5},
				[2]int{3, 6}, [2]int{4, 6},
				[2]int{4, 7},
				[2]int{4, 8}),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info, lights, err := GenerateLights(tt.base, tt.rightX, tt.rightH, tt.leftX, tt.leftH, tt.cfg)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.wantLights, lights); diff != "" {
				t.Errorf("lights mismatch (-want +got):\n%s", diff)
			}
			testutil.AssertVecNear(t, info.Translation, tt.wantTranslation, 1e-9)
			testutil.AssertVecNear(t, info.Transform.Matrix.Translation(), tt.wantTranslation, 1e-9)
			assert.Equal(t, tt.wantRows, info.Rows)
			assert.Equal(t, tt.wantCols, info.Columns)
			testutil.AssertMatrixNear(t, info.Transform.Matrix.Mul(info.Transform.Inverse), affine.Identity, geom.ATOL)
		})
	}
}

func TestGenerateLights_MarginResolution(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(0.2)
	cfg.Margin = 0.1
	info, _, err := GenerateLights(1.1, 1.1, 2.2, 1.1, 2.2, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, info.Margins.Bottom, 1e-12)
	assert.InDelta(t, 0.4236067977499791, info.Margins.Top, 1e-9)
	assert.InDelta(t, 0.1118033988749895, info.Margins.Left, 1e-9)
	assert.InDelta(t, 0.1, info.Margins.Right, 1e-9)
	assert.True(t, math.IsInf(info.GradientRight, 1))
	assert.InDelta(t, 2.0, info.GradientLeft, 1e-12)
}

func TestGenerateLights_MarginOverrides(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(0.5)
	cfg.Margin = 0.1
	cfg.MarginVerticalTop = Float(0.3)
	cfg.MarginLeft = Float(0.2)
	cfg.MarginRight = Float(0)

	info, lights, err := GenerateLights(2, 2, 2, 0, 2, cfg)
	require.NoError(t, err)
	assert.Equal(t, Margins{Bottom: 0.1, Top: 0.3, Left: 0.2, Right: 0}, info.Margins)

	// Vertical: usable 1.6, 4 rows, padding 0.05.
	// Horizontal: usable 1.8, 4 columns, padding 0.15.
	assert.Equal(t, 4, info.Rows)
	assert.Equal(t, 4, info.Columns)
	assert.Len(t, lights, 16)
	testutil.AssertVecNear(t, info.Translation, r3.Vec{X: 0.35, Y: 0.15}, 1e-9)
}

func TestGenerateLights_ShearedGrid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(1)
	cfg.GridGradient = math.Sqrt(3)
	info, lights, err := GenerateLights(2, 1, math.Sqrt(3), 1, math.Sqrt(3), cfg)
	require.NoError(t, err)

	want := lightsOf([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{1, 1}, [2]int{0, 1}, [2]int{0, 2})
	if diff := cmp.Diff(want, lights); diff != "" {
		t.Errorf("lights mismatch (-want +got):\n%s", diff)
	}

	wantMatrix := affine.Matrix{
		1, 0.5, 0, 0,
		0, math.Sqrt(3) / 2, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	testutil.AssertMatrixNear(t, info.Transform.Matrix, wantMatrix, 1e-9)
	assert.InDelta(t, 1.0, info.Spacing.Horizontal, 1e-12)
	assert.InDelta(t, math.Sqrt(3)/2, info.Spacing.Vertical, 1e-12)
	assert.InDelta(t, 0.5, info.Spacing.Shear, 1e-12)

	// The apex pixel lands on the triangle's apex.
	testutil.AssertVecNear(t, info.Transform.Matrix.Apply(r3.Vec{Y: 2}), r3.Vec{X: 1, Y: math.Sqrt(3)}, 1e-9)
}

func TestGenerateLights_NegativeGridGradient(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(1)
	cfg.GridGradient = -math.Sqrt(3)
	info, lights, err := GenerateLights(2, 1, math.Sqrt(3), 1, math.Sqrt(3), cfg)
	require.NoError(t, err)

	want := lightsOf([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}, [2]int{2, 1}, [2]int{1, 1}, [2]int{2, 2})
	if diff := cmp.Diff(want, lights); diff != "" {
		t.Errorf("lights mismatch (-want +got):\n%s", diff)
	}

	// Rows go up and lean left, so every pixel stays inside the triangle.
	testutil.AssertVecNear(t, info.Transform.Matrix.Apply(r3.Vec{X: 2, Y: 2}), r3.Vec{X: 1, Y: math.Sqrt(3)}, 1e-9)
	testutil.AssertVecNear(t, info.Transform.Matrix.Apply(r3.Vec{X: 1, Y: 1}), r3.Vec{X: 0.5, Y: math.Sqrt(3) / 2}, 1e-9)
}

func TestGenerateLights_Wiring(t *testing.T) {
	t.Parallel()

	square := func(t *testing.T, cfg Config) LightGrid {
		t.Helper()
		_, lights, err := GenerateLights(1, 1, 1, 0, 1, cfg)
		require.NoError(t, err)
		return lights
	}

	t.Run("straight", func(t *testing.T) {
		cfg := DefaultConfig(0.5)
		cfg.WiringSerpentine = false
		want := lightsOf(
			[2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0},
			[2]int{0, 1}, [2]int{1, 1}, [2]int{2, 1},
			[2]int{0, 2}, [2]int{1, 2}, [2]int{2, 2})
		assert.Empty(t, cmp.Diff(want, square(t, cfg)))
	})

	t.Run("serpentine reversed", func(t *testing.T) {
		cfg := DefaultConfig(0.5)
		cfg.WiringReverse = true
		want := lightsOf(
			[2]int{2, 2}, [2]int{1, 2}, [2]int{0, 2},
			[2]int{0, 1}, [2]int{1, 1}, [2]int{2, 1},
			[2]int{2, 0}, [2]int{1, 0}, [2]int{0, 0})
		assert.Empty(t, cmp.Diff(want, square(t, cfg)))
	})

	t.Run("idempotent", func(t *testing.T) {
		cfg := DefaultConfig(0.2)
		cfg.Margin = 0.1
		first := square(t, cfg)
		second := square(t, cfg)
		assert.Equal(t, first, second)
	})
}

func TestGenerateLights_Degenerate(t *testing.T) {
	t.Parallel()

	t.Run("smaller than margins", func(t *testing.T) {
		cfg := DefaultConfig(0.5)
		cfg.Margin = 0.6
		info, lights, err := GenerateLights(1, 1, 1, 0, 1, cfg)
		require.NoError(t, err)
		assert.Empty(t, lights)
		assert.Equal(t, 0, info.Rows)
		assert.Equal(t, 0, info.Columns)
	})

	t.Run("single pixel", func(t *testing.T) {
		info, lights, err := GenerateLights(0.3, 0, 0.3, 0, 0.3, DefaultConfig(0.5))
		require.NoError(t, err)
		assert.Equal(t, lightsOf([2]int{0, 0}), lights)
		testutil.AssertVecNear(t, info.Translation, r3.Vec{X: 0.075, Y: 0.15}, 1e-9)
	})
}

func TestGenerateLights_InvalidConfig(t *testing.T) {
	t.Parallel()

	base := DefaultConfig(0.5)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero spacing", func(c *Config) { c.Spacing = 0 }},
		{"nan spacing", func(c *Config) { c.Spacing = math.NaN() }},
		{"flat grid gradient", func(c *Config) { c.GridGradient = 0 }},
		{"negative margin", func(c *Config) { c.Margin = -0.1 }},
		{"negative top margin", func(c *Config) { c.MarginVerticalTop = Float(-1) }},
		{"zero vertical spacing", func(c *Config) { c.SpacingVertical = Float(0) }},
		{"infinite z", func(c *Config) { c.ZOffset = math.Inf(1) }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			_, _, err := GenerateLights(1, 1, 1, 0, 1, cfg)
			assert.True(t, errors.Is(err, geom.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestGenerateLights_SpacingVerticalOverride(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig(0.5)
	cfg.SpacingVertical = Float(0.25)
	info, lights, err := GenerateLights(1, 1, 1, 0, 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, info.Rows)
	assert.Len(t, lights, 15)
	assert.Equal(t, Spacing{Horizontal: 0.5, Vertical: 0.25, Shear: 0}, info.Spacing)
	testutil.AssertVecNear(t, info.Transform.Matrix.Apply(r3.Vec{X: 2, Y: 4}), r3.Vec{X: 1, Y: 1}, 1e-9)
}

func TestLightGridPairs(t *testing.T) {
	t.Parallel()
	pairs := [][2]int{{0, 0}, {3, 1}, {-1, 2}}
	assert.Equal(t, pairs, FromPairs(pairs).Pairs())
	assert.Equal(t, [3]float64{1, 2, 3}, Spacing{1, 2, 3}.Triple())
}
