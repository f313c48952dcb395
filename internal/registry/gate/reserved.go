package gate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed reserved.yaml
var defaultReserved []byte

type reservedFile struct {
	Indices map[string][]string `yaml:"indices"`
}

// ReservedList is the set of external tickers protected until the full phase.
// Lookups are case-insensitive.
type ReservedList struct {
	index map[string]string
}

// NewReservedList builds a list from index name to tickers.
func NewReservedList(indices map[string][]string) *ReservedList {
	l := &ReservedList{index: make(map[string]string)}
	for name, symbols := range indices {
		for _, sym := range symbols {
			key := strings.ToUpper(strings.TrimSpace(sym))
			if key == "" {
				continue
			}
			if _, seen := l.index[key]; !seen {
				l.index[key] = name
			}
		}
	}
	return l
}

// ParseReservedList decodes the YAML produced by the reserved list generator.
func ParseReservedList(data []byte) (*ReservedList, error) {
	var f reservedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reserved list: %w", err)
	}
	return NewReservedList(f.Indices), nil
}

// LoadReservedList reads path, or the built-in list when path is empty.
func LoadReservedList(path string) (*ReservedList, error) {
	if path == "" {
		return ParseReservedList(defaultReserved)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reserved list: %w", err)
	}
	return ParseReservedList(data)
}

// Lookup returns the index that reserves symbol.
func (l *ReservedList) Lookup(symbol string) (string, bool) {
	if l == nil {
		return "", false
	}
	name, ok := l.index[strings.ToUpper(symbol)]
	return name, ok
}

func (l *ReservedList) IsReserved(symbol string) bool {
	_, ok := l.Lookup(symbol)
	return ok
}

func (l *ReservedList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.index)
}
