package domain

import "sort"

// DeviceClassLights is the topology section holding controllable lights.
const DeviceClassLights = "lights"

// Topology maps device names to device-control identifiers. It is built once
// at start-up and never modified afterwards.
type Topology struct {
	ids map[string]string
}

func NewTopology(ids map[string]string) *Topology {
	copied := make(map[string]string, len(ids))
	for name, id := range ids {
		copied[name] = id
	}
	return &Topology{ids: copied}
}

func (t *Topology) Resolve(name string) (string, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Names returns the device names in sorted order.
func (t *Topology) Names() []string {
	names := make([]string, 0, len(t.ids))
	for name := range t.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Topology) Len() int {
	return len(t.ids)
}
