package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFindRouteOnFiveNodeChain(t *testing.T) {
	registry := mustRegistry(t, linearChain("v1", "v2", "v3", "v4", "v5"))

	data, err := os.ReadFile(filepath.Join("testdata", "routes.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var cases []struct {
		Name      string `json:"name"`
		Start     string `json:"start"`
		Target    string `json:"target"`
		OK        bool   `json:"ok"`
		Direction string `json:"direction"`
		Hops      int    `json:"hops"`
	}
	if err := json.Unmarshal(data, &cases); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			route, ok := findRoute(registry, tc.Start, tc.Target)
			if ok != tc.OK {
				t.Fatalf("expected ok=%v, got %v", tc.OK, ok)
			}
			if !tc.OK {
				return
			}
			if route.Direction.String() != tc.Direction || route.Hops != tc.Hops {
				t.Fatalf("expected %d %s hops, got %+v", tc.Hops, tc.Direction, route)
			}
			if len(route.Directions()) != tc.Hops {
				t.Fatalf("expected %d materialized hops, got %d", tc.Hops, len(route.Directions()))
			}
		})
	}
}

func TestRouteDirectionsShareOneDirection(t *testing.T) {
	route := Route{Direction: Backward, Hops: 3}
	for i, d := range route.Directions() {
		if d != Backward {
			t.Fatalf("hop %d: expected backward, got %s", i, d)
		}
	}
}
