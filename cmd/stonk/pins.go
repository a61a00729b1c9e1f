package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stonkboard/internal/pinned"
)

// parsePinArgs reads "SYMBOL" or "SYMBOL~NAME" arguments.
func parsePinArgs(args []string) ([]pinned.Stock, error) {
	out := make([]pinned.Stock, 0, len(args))
	for _, a := range args {
		sym, name, _ := strings.Cut(a, "~")
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			return nil, fmt.Errorf("invalid stock %q: empty symbol", a)
		}
		out = append(out, pinned.Stock{Symbol: sym, Name: strings.TrimSpace(name)})
	}
	return out, nil
}

// loadPinsFile reads a YAML pins file. Two shapes are accepted:
//
//	- symbol: GME
//	  name: GameStop Corp
//
// or the same list under a top-level "pins" key.
func loadPinsFile(path string) ([]pinned.Stock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var stocks []pinned.Stock
	if err := yaml.Unmarshal(data, &stocks); err != nil {
		var alt struct {
			Pins []pinned.Stock `yaml:"pins"`
		}
		if err2 := yaml.Unmarshal(data, &alt); err2 != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
		stocks = alt.Pins
	}

	out := make([]pinned.Stock, 0, len(stocks))
	for i, s := range stocks {
		s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
		s.Name = strings.TrimSpace(s.Name)
		if s.Symbol == "" {
			return nil, fmt.Errorf("%s: entry %d has no symbol", path, i+1)
		}
		out = append(out, s)
	}
	return out, nil
}
