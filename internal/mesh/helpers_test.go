package mesh

import "github.com/banshee-data/ledpanel/internal/grid"

func gridFor(spacing float64) grid.Config {
	cfg := grid.DefaultConfig(spacing)
	cfg.ZOffset = -0.01
	return cfg
}
