package level

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ObjectType is the kind of physics object a layer's contours become.
type ObjectType int

const (
	ObjectSolid ObjectType = iota
	ObjectSolidOneSided
	ObjectDeadly
)

func (t ObjectType) String() string {
	switch t {
	case ObjectSolidOneSided:
		return "solid_onesided"
	case ObjectDeadly:
		return "deadly"
	default:
		return "solid"
	}
}

// ParseObjectType converts a configuration string into an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "solid":
		return ObjectSolid, nil
	case "solid_onesided", "onesided":
		return ObjectSolidOneSided, nil
	case "deadly":
		return ObjectDeadly, nil
	default:
		return ObjectSolid, fmt.Errorf("unknown object type %q", s)
	}
}

// Profile describes how one named layer is marched and where its artifacts go.
type Profile struct {
	Layer        string `mapstructure:"layer" yaml:"layer" json:"layer"`
	CollidingIDs []int  `mapstructure:"colliding_ids" yaml:"colliding_ids" json:"colliding_ids"`
	CacheFile    string `mapstructure:"cache_file" yaml:"cache_file" json:"cache_file"`
	GridImage    string `mapstructure:"grid_image" yaml:"grid_image" json:"grid_image"`
	PathImage    string `mapstructure:"path_image" yaml:"path_image" json:"path_image"`
	ObjectType   string `mapstructure:"object_type" yaml:"object_type" json:"object_type"`
}

// Type returns the parsed object type, falling back to solid.
func (p Profile) Type() ObjectType {
	t, err := ParseObjectType(p.ObjectType)
	if err != nil {
		return ObjectSolid
	}
	return t
}

// WithCollidingIDs returns p marching ids instead of its own ids. When the id
// set differs and p caches, the cache file is renamed after the new set so
// contours of different id sets never share a cache.
func (p Profile) WithCollidingIDs(ids []int) Profile {
	changed := !slices.Equal(normalizeIDs(p.CollidingIDs), normalizeIDs(ids))
	p.CollidingIDs = slices.Clone(ids)
	if changed && p.CacheFile != "" {
		p.CacheFile = CacheFileFor(p.Layer, ids)
	}
	return p
}

// CacheFileFor names the cache file of layer marched with ids, e.g.
// "walls_1-4.csv".
func CacheFileFor(layer string, ids []int) string {
	norm := normalizeIDs(ids)
	if len(norm) == 0 {
		return layer + ".csv"
	}
	parts := make([]string, len(norm))
	for i, id := range norm {
		parts[i] = strconv.Itoa(id)
	}
	return layer + "_" + strings.Join(parts, "-") + ".csv"
}

func normalizeIDs(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// DefaultProfiles returns the stock layer setup: solid ground, one-sided
// platforms and deadly tiles.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Layer:        "level",
			CollidingIDs: []int{1},
			CacheFile:    "physics_path_solid.csv",
			GridImage:    "physics_grid_solid.png",
			PathImage:    "physics_path_solid.png",
			ObjectType:   ObjectSolid.String(),
		},
		{
			Layer:        "level_solid_onesided",
			CollidingIDs: []int{1},
			CacheFile:    "physics_path_solid_onesided.csv",
			GridImage:    "physics_grid_solid_onesided.png",
			PathImage:    "physics_path_solid_onesided.png",
			ObjectType:   ObjectSolidOneSided.String(),
		},
		{
			Layer:        "level_deadly",
			CollidingIDs: []int{3},
			CacheFile:    "physics_path_deadly.csv",
			GridImage:    "physics_grid_deadly.png",
			PathImage:    "physics_path_deadly.png",
			ObjectType:   ObjectDeadly.String(),
		},
	}
}

// FindProfile returns the profile for layer, if any.
func FindProfile(profiles []Profile, layer string) (Profile, bool) {
	for _, p := range profiles {
		if p.Layer == layer {
			return p, true
		}
	}
	return Profile{}, false
}
