// Package sim runs vendor conversations against an in-memory server, the way the game
// server does: the plugin sees each selected response first, then the server checks the
// response's conditions, deducts scrap and spawns the vehicle.
package sim

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/vehicle-vendor/pkg/conversation"
)

//go:embed graphs/*.yaml
var graphFS embed.FS

// GraphNames lists the bundled vendor graphs.
func GraphNames() []string {
	entries, err := graphFS.ReadDir("graphs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadGraph loads a bundled vendor graph by name.
func LoadGraph(name string) (*conversation.Graph, error) {
	data, err := graphFS.ReadFile("graphs/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown vendor graph %q", name)
	}
	return ParseGraph(data)
}

// ParseGraph decodes a YAML vendor graph and checks that every target exists.
func ParseGraph(data []byte) (*conversation.Graph, error) {
	var g conversation.Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse vendor graph: %w", err)
	}
	if len(g.Speeches) == 0 {
		return nil, fmt.Errorf("vendor graph %q has no speech nodes", g.ShortName)
	}
	for _, s := range g.Speeches {
		for i, r := range s.Responses {
			if r.Target == conversation.EndNode {
				continue
			}
			if _, ok := g.Speech(r.Target); !ok {
				return nil, fmt.Errorf("vendor graph %q: %s response %d targets unknown node %q", g.ShortName, s.Name, i, r.Target)
			}
		}
	}
	return &g, nil
}
