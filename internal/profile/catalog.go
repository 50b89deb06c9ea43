package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// NoExplanation is returned for programs without a naming note.
const NoExplanation = "No explanation is available for how these clusters were named."

//go:embed catalog.toml
var defaultCatalogTOML []byte

// ClusterLabel is a cluster id with its display name.
type ClusterLabel struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type programLabels struct {
	explanation string
	clusters    []ClusterLabel // sorted by ID
}

// Catalog maps (program, cluster id) to display names. It is read-only after
// construction and safe for concurrent use. A nil *Catalog answers every
// lookup with its fallback.
type Catalog struct {
	programs map[model.Program]programLabels
}

type catalogFile struct {
	Explanation string                 `toml:"explanation"`
	Programs    map[string]programFile `toml:"programs"`
}

type programFile struct {
	Explanation string            `toml:"explanation"`
	Clusters    map[string]string `toml:"clusters"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(defaultCatalogTOML)
		if err != nil {
			panic("profile: embedded catalog: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog reads a catalog from a TOML file. An empty path returns the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes catalog TOML. A top-level explanation applies to every
// listed program that does not set its own.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{programs: make(map[model.Program]programLabels, len(f.Programs))}
	for name, pf := range f.Programs {
		p, ok := model.ParseProgram(name)
		if !ok {
			return nil, fmt.Errorf("catalog: unknown program %q", name)
		}

		pl := programLabels{explanation: strings.TrimSpace(pf.Explanation)}
		if pl.explanation == "" {
			pl.explanation = strings.TrimSpace(f.Explanation)
		}
		for key, label := range pf.Clusters {
			id, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || id < 0 {
				return nil, fmt.Errorf("catalog: %s: cluster id %q is not a non-negative integer", p, key)
			}
			pl.clusters = append(pl.clusters, ClusterLabel{ID: id, Name: label})
		}
		sort.Slice(pl.clusters, func(i, j int) bool {
			return pl.clusters[i].ID < pl.clusters[j].ID
		})
		c.programs[p] = pl
	}
	return c, nil
}

// DisplayName returns the catalog name of a cluster, or "Cluster <id>" when
// the catalog has none.
func (c *Catalog) DisplayName(p model.Program, clusterID int) string {
	if c != nil {
		for _, l := range c.programs[p].clusters {
			if l.ID == clusterID {
				return l.Name
			}
		}
	}
	return "Cluster " + strconv.Itoa(clusterID)
}

// Explanation returns the note describing how a program's clusters were named.
func (c *Catalog) Explanation(p model.Program) string {
	if c != nil {
		if e := c.programs[p].explanation; e != "" {
			return e
		}
	}
	return NoExplanation
}

// Clusters returns the catalogued clusters of a program ordered by id.
func (c *Catalog) Clusters(p model.Program) []ClusterLabel {
	if c == nil {
		return nil
	}
	return append([]ClusterLabel(nil), c.programs[p].clusters...)
}

// Lookup finds the cluster id for a display name.
func (c *Catalog) Lookup(p model.Program, displayName string) (int, bool) {
	if c == nil {
		return 0, false
	}
	for _, l := range c.programs[p].clusters {
		if l.Name == displayName {
			return l.ID, true
		}
	}
	return 0, false
}

// Labels returns display labels for the given cluster ids, falling back to
// "Cluster <id>" for ids missing from the catalog.
func (c *Catalog) Labels(p model.Program, ids []int) []ClusterLabel {
	out := make([]ClusterLabel, len(ids))
	for i, id := range ids {
		out[i] = ClusterLabel{ID: id, Name: c.DisplayName(p, id)}
	}
	return out
}
