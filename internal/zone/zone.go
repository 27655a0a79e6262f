package zone

import (
	"log"
	"math"

	"backend-geoattend/internal/shared/geo"

	"github.com/spf13/viper"
)

// Zone is a 3-D acceptance region: a horizontal circle around a center point
// plus an altitude band around the center altitude (meters above sea level).
type Zone struct {
	CenterLat          float64 `mapstructure:"center_lat" json:"center_lat"`
	CenterLon          float64 `mapstructure:"center_lon" json:"center_lon"`
	CenterAlt          float64 `mapstructure:"center_alt" json:"center_alt"`
	RadiusMeters       float64 `mapstructure:"radius_meters" json:"radius_meters"`
	AltToleranceMeters float64 `mapstructure:"alt_tolerance_meters" json:"alt_tolerance_meters"`
}

// Contains reports whether a reading falls inside the zone. Both the
// horizontal and the vertical check must pass.
func (z Zone) Contains(lat, lon, alt float64) bool {
	dist := geo.HaversineMeters(lat, lon, z.CenterLat, z.CenterLon)
	altDiff := math.Abs(alt - z.CenterAlt)
	return dist <= z.RadiusMeters && altDiff <= z.AltToleranceMeters
}

// Registry maps class identifiers to zones. It is built once at startup and
// read-only afterwards.
type Registry struct {
	zones map[string]Zone
}

func NewRegistry(zones map[string]Zone) *Registry {
	merged := map[string]Zone{}
	for id, z := range defaultZones() {
		merged[id] = z
	}
	for id, z := range zones {
		merged[id] = z
	}
	return &Registry{zones: merged}
}

// Load builds a registry from an optional YAML file. An empty path or an
// unreadable file yields the built-in defaults only.
func Load(path string) *Registry {
	if path == "" {
		return NewRegistry(nil)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		log.Printf("zones file %s unreadable, using built-in zones: %v", path, err)
		return NewRegistry(nil)
	}

	var file struct {
		Zones map[string]Zone `mapstructure:"zones"`
	}
	if err := v.Unmarshal(&file); err != nil {
		log.Printf("zones file %s malformed, using built-in zones: %v", path, err)
		return NewRegistry(nil)
	}
	return NewRegistry(file.Zones)
}

func (r *Registry) Lookup(classID string) (Zone, bool) {
	z, ok := r.zones[classID]
	return z, ok
}

func (r *Registry) Len() int {
	return len(r.zones)
}

func defaultZones() map[string]Zone {
	return map[string]Zone{
		"CS101": {
			CenterLat:          37.7749,
			CenterLon:          -122.4194,
			CenterAlt:          15.0,
			RadiusMeters:       50,
			AltToleranceMeters: 5.0,
		},
	}
}
