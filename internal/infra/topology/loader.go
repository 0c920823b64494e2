package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"smart-lights/internal/domain"
)

// Load reads the light name to device id mapping from path. A file without a
// lights section yields an empty topology.
func Load(path string) (*domain.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*domain.Topology, error) {
	// YAML is a superset of JSON, so one decoder reads both formats.
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing device file: %w", err)
	}

	node, ok := doc[domain.DeviceClassLights]
	if !ok {
		return domain.NewTopology(nil), nil
	}

	var lights map[string]string
	if err := node.Decode(&lights); err != nil {
		return nil, fmt.Errorf("decoding %s section: %w", domain.DeviceClassLights, err)
	}
	return domain.NewTopology(lights), nil
}
