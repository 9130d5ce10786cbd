package loader

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/quadroute/quadroute/internal/building"
)

// buildingSeed is one entry of the building seed file.
type buildingSeed struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Lat     float64  `yaml:"lat"`
	Lng     float64  `yaml:"lng"`
}

type buildingSeedFile struct {
	Buildings []buildingSeed `yaml:"buildings"`
}

// ParseBuildingsYAML parses a building seed file. Every entry needs an ID, a
// name and coordinates; a bad entry fails the whole parse so a typo in the
// seed file never half-loads the directory.
func ParseBuildingsYAML(r io.Reader) ([]*building.Building, error) {
	var file buildingSeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode building seed: %w", err)
	}

	if len(file.Buildings) == 0 {
		return nil, fmt.Errorf("building seed file has no buildings")
	}

	out := make([]*building.Building, 0, len(file.Buildings))
	for i, seed := range file.Buildings {
		if seed.ID == "" {
			return nil, fmt.Errorf("building %d: missing id", i)
		}
		if seed.Name == "" {
			return nil, fmt.Errorf("building %q: missing name", seed.ID)
		}
		if seed.Lat < -90 || seed.Lat > 90 || seed.Lng < -180 || seed.Lng > 180 {
			return nil, fmt.Errorf("building %q: coordinates out of range", seed.ID)
		}
		out = append(out, &building.Building{
			ID:      seed.ID,
			Name:    seed.Name,
			Aliases: seed.Aliases,
			Lat:     seed.Lat,
			Lng:     seed.Lng,
		})
	}

	return out, nil
}
