package models

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
)

// FeatureType distinguishes point annotations from multi-vertex routes.
type FeatureType string

const (
	FeaturePoint FeatureType = "point"
	FeatureRoute FeatureType = "route"
)

// LatLng is a map coordinate as the client reports it.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point converts to orb's (lon, lat) ordering.
func (c LatLng) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// FromPoint converts back from orb's (lon, lat) ordering.
func FromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Y(), Lng: p.X()}
}

// Geometry is the placed shape of a feature. Exactly one of Point or Route is
// meaningful, selected by Type; the stored JSON form uses [lat, lng]
// coordinate arrays.
type Geometry struct {
	Type  FeatureType
	Point orb.Point
	Route orb.LineString
}

// PointGeometry builds a point geometry at the given coordinate.
func PointGeometry(at LatLng) Geometry {
	return Geometry{Type: FeaturePoint, Point: at.Point()}
}

// RouteGeometry builds a route geometry over the given vertices.
func RouteGeometry(points []LatLng) Geometry {
	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, p.Point())
	}
	return Geometry{Type: FeatureRoute, Route: line}
}

// Clone returns a copy whose route vertices are detached from the receiver.
func (g Geometry) Clone() Geometry {
	out := g
	if g.Route != nil {
		out.Route = make(orb.LineString, len(g.Route))
		copy(out.Route, g.Route)
	}
	return out
}

// Coords returns the geometry vertices as lat/lng pairs in order.
func (g Geometry) Coords() []LatLng {
	if g.Type == FeaturePoint {
		return []LatLng{FromPoint(g.Point)}
	}
	out := make([]LatLng, 0, len(g.Route))
	for _, p := range g.Route {
		out = append(out, FromPoint(p))
	}
	return out
}

type geometryJSON struct {
	Type   FeatureType     `json:"type"`
	Coords json.RawMessage `json:"coords"`
}

// MarshalJSON encodes coords as [lat, lng] for points and [[lat, lng], ...]
// for routes, matching the persisted wire form.
func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Type {
	case FeaturePoint:
		coords, err := json.Marshal([2]float64{g.Point.Y(), g.Point.X()})
		if err != nil {
			return nil, err
		}
		return json.Marshal(geometryJSON{Type: g.Type, Coords: coords})
	case FeatureRoute:
		pairs := make([][2]float64, 0, len(g.Route))
		for _, p := range g.Route {
			pairs = append(pairs, [2]float64{p.Y(), p.X()})
		}
		coords, err := json.Marshal(pairs)
		if err != nil {
			return nil, err
		}
		return json.Marshal(geometryJSON{Type: g.Type, Coords: coords})
	default:
		return nil, fmt.Errorf("unknown geometry type %q", g.Type)
	}
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw geometryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case FeaturePoint:
		var pair [2]float64
		if err := json.Unmarshal(raw.Coords, &pair); err != nil {
			return fmt.Errorf("decode point coords: %w", err)
		}
		*g = Geometry{Type: FeaturePoint, Point: orb.Point{pair[1], pair[0]}}
	case FeatureRoute:
		var pairs [][2]float64
		if err := json.Unmarshal(raw.Coords, &pairs); err != nil {
			return fmt.Errorf("decode route coords: %w", err)
		}
		line := make(orb.LineString, 0, len(pairs))
		for _, pair := range pairs {
			line = append(line, orb.Point{pair[1], pair[0]})
		}
		*g = Geometry{Type: FeatureRoute, Route: line}
	default:
		return fmt.Errorf("unknown geometry type %q", raw.Type)
	}
	return nil
}
