package bvh

import (
	"fmt"
	"strings"
)

// Strategy selects the split selection algorithm used by a builder.
type Strategy uint8

const (
	// Split at the spatial midpoint of the longest centroid axis.
	StrategyMedian Strategy = iota

	// Split where the surface area heuristic cost is minimized.
	StrategySAH

	// Sort by morton code and split at the highest differing bit.
	StrategyMortonTopDown

	// Parallel bottom-up construction from sorted morton codes.
	StrategyLBVH
)

var strategyNames = map[Strategy]string{
	StrategyMedian:        "median",
	StrategySAH:           "sah",
	StrategyMortonTopDown: "morton",
	StrategyLBVH:          "lbvh",
}

// Implements Stringer.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// Parse a strategy name (case-insensitive).
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, sName := range strategyNames {
		if sName == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Builder options.
type Options struct {
	Strategy Strategy

	// Ranges with at most this many items become leaves. Ignored by the
	// LBVH strategy which always emits one item per leaf.
	MaxLeafSize int

	// Generate the six directional traversal orders after building.
	SixSided bool

	// Number of goroutines used by parallel phases; <= 0 uses GOMAXPROCS.
	Workers int
}

// Get the default builder options.
func DefaultOptions() Options {
	return Options{
		Strategy:    StrategySAH,
		MaxLeafSize: 1,
	}
}

// The Builder interface is implemented by all BVH construction strategies,
// host or device based.
type Builder interface {
	// Build a new tree from the given work list. An empty work list
	// yields an empty tree.
	Build(workList []BoundedVolume) (*Tree, error)
}

// Create a host builder for the strategy selected in opts.
func NewBuilder(opts Options) (Builder, error) {
	if opts.MaxLeafSize < 1 {
		return nil, ErrInvalidLeafSize
	}

	switch opts.Strategy {
	case StrategyMedian:
		return newTopDownBuilder(opts, medianSplitter{}), nil
	case StrategySAH:
		return newTopDownBuilder(opts, sahSplitter{}), nil
	case StrategyMortonTopDown:
		return newTopDownBuilder(opts, mortonSplitter{}), nil
	case StrategyLBVH:
		return newLBVHBuilder(opts), nil
	}
	return nil, ErrUnknownStrategy
}

// Build a tree using a host builder configured by opts.
func Build(workList []BoundedVolume, opts Options) (*Tree, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, err
	}
	return b.Build(workList)
}
