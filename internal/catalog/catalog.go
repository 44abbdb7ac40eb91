package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"discernment-trainer/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed content.yml
var defaultContent []byte

// Set names a fixed partition of the catalog
type Set string

const (
	SetExposure Set = "exposure"
	// SetTraining is derived: the fraudulent exposure items in exposure order
	SetTraining Set = "training"
	SetTest     Set = "test"
)

// ErrUnknownSet is returned for a set name the catalog does not define
var ErrUnknownSet = errors.New("unknown catalog set")

// ParseSet converts a raw string into a Set
func ParseSet(s string) (Set, error) {
	switch set := Set(s); set {
	case SetExposure, SetTraining, SetTest:
		return set, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSet, s)
}

// Catalog is the immutable content every phase draws from.
// It is the single place that answers "is this id fraudulent and with which tactics".
type Catalog struct {
	tactics  []models.TacticInfo
	exposure []models.Notification
	training []models.Notification
	test     []models.Notification
	byID     map[string]models.Notification
}

type document struct {
	Tactics  []models.TacticInfo   `yaml:"tactics"`
	Exposure []models.Notification `yaml:"exposure"`
	Test     []models.Notification `yaml:"test"`
}

// Default returns the catalog bundled with the binary
func Default() (*Catalog, error) {
	return Parse(defaultContent)
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(doc.Exposure, doc.Test, doc.Tactics)
}

// New validates the partitions and builds a catalog.
// Missing legend entries fall back to the built-in tactic names.
func New(exposure, test []models.Notification, legend []models.TacticInfo) (*Catalog, error) {
	c := &Catalog{
		byID: make(map[string]models.Notification),
	}

	var err error
	if c.exposure, err = c.index(SetExposure, exposure); err != nil {
		return nil, err
	}
	if c.test, err = c.index(SetTest, test); err != nil {
		return nil, err
	}
	for _, n := range c.exposure {
		if n.IsFraudulent {
			c.training = append(c.training, n)
		}
	}

	if c.tactics, err = buildLegend(legend); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) index(set Set, items []models.Notification) ([]models.Notification, error) {
	seen := make(map[string]bool, len(items))
	out := make([]models.Notification, 0, len(items))

	for i, n := range items {
		if n.ID == "" {
			return nil, fmt.Errorf("%s[%d]: missing id", set, i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("%s: duplicate id %q", set, n.ID)
		}
		seen[n.ID] = true

		if !n.Channel.Valid() {
			return nil, fmt.Errorf("%s/%s: unknown channel %q", set, n.ID, n.Channel)
		}
		for _, t := range n.Tactics {
			if !t.Valid() {
				return nil, fmt.Errorf("%s/%s: unknown tactic %q", set, n.ID, t)
			}
		}

		// Records shared between partitions must agree on ground truth.
		if prev, ok := c.byID[n.ID]; ok {
			if prev.IsFraudulent != n.IsFraudulent || !slices.Equal(prev.Tactics, n.Tactics) {
				return nil, fmt.Errorf("%s/%s: conflicts with record of the same id in another set", set, n.ID)
			}
		} else {
			c.byID[n.ID] = clone(n)
		}

		out = append(out, clone(n))
	}
	return out, nil
}

func buildLegend(legend []models.TacticInfo) ([]models.TacticInfo, error) {
	given := make(map[models.Tactic]models.TacticInfo, len(legend))
	for _, info := range legend {
		if !info.Tactic.Valid() {
			return nil, fmt.Errorf("tactics: unknown tactic %q", info.Tactic)
		}
		given[info.Tactic] = info
	}

	out := make([]models.TacticInfo, 0, len(models.AllTactics))
	for _, t := range models.AllTactics {
		info, ok := given[t]
		if !ok {
			info = models.TacticInfo{Tactic: t}
		}
		if info.Name == "" {
			info.Name = models.TacticNames[t]
		}
		out = append(out, info)
	}
	return out, nil
}

// Notification looks up a record by id
func (c *Catalog) Notification(id string) (models.Notification, bool) {
	n, ok := c.byID[id]
	if !ok {
		return models.Notification{}, false
	}
	return clone(n), true
}

// Slice returns a copy of the named partition
func (c *Catalog) Slice(set Set) ([]models.Notification, error) {
	var src []models.Notification
	switch set {
	case SetExposure:
		src = c.exposure
	case SetTraining:
		src = c.training
	case SetTest:
		src = c.test
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSet, set)
	}

	out := make([]models.Notification, len(src))
	for i, n := range src {
		out[i] = clone(n)
	}
	return out, nil
}

// Exposure returns the exposure partition
func (c *Catalog) Exposure() []models.Notification {
	out, _ := c.Slice(SetExposure)
	return out
}

// Training returns the fraudulent exposure items
func (c *Catalog) Training() []models.Notification {
	out, _ := c.Slice(SetTraining)
	return out
}

// Test returns the test partition
func (c *Catalog) Test() []models.Notification {
	out, _ := c.Slice(SetTest)
	return out
}

// Tactics returns the tactic legend in legend order
func (c *Catalog) Tactics() []models.TacticInfo {
	return slices.Clone(c.tactics)
}

func clone(n models.Notification) models.Notification {
	n.Tactics = slices.Clone(n.Tactics)
	return n
}
