package models

import (
	"encoding/json"
	"testing"
)

func TestAverageRating(t *testing.T) {
	f := &Feature{}
	if got := f.AverageRating(); got != NoReviewsSentinel {
		t.Fatalf("expected no-reviews sentinel, got %q", got)
	}

	f.Reviews = []Review{{Rating: 5}, {Rating: 3}, {Rating: 4}}
	if got := f.AverageRating(); got != "4.0" {
		t.Fatalf("expected 4.0, got %q", got)
	}

	f.Reviews = []Review{{Rating: 4}, {Rating: 3}}
	if got := f.AverageRating(); got != "3.5" {
		t.Fatalf("expected 3.5, got %q", got)
	}
}

func TestGeometryJSONKeepsLatLngOrder(t *testing.T) {
	point := PointGeometry(LatLng{Lat: 55.0, Lng: 37.0})
	raw, err := json.Marshal(point)
	if err != nil {
		t.Fatalf("marshal point: %v", err)
	}
	if string(raw) != `{"type":"point","coords":[55,37]}` {
		t.Fatalf("unexpected point encoding: %s", raw)
	}

	var decoded Geometry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal point: %v", err)
	}
	at := FromPoint(decoded.Point)
	if at.Lat != 55.0 || at.Lng != 37.0 {
		t.Fatalf("round trip moved the point: %+v", at)
	}

	route := RouteGeometry([]LatLng{{Lat: 55.0, Lng: 37.0}, {Lat: 55.1, Lng: 37.1}})
	raw, err = json.Marshal(route)
	if err != nil {
		t.Fatalf("marshal route: %v", err)
	}
	var back Geometry
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal route: %v", err)
	}
	if back.Type != FeatureRoute || len(back.Route) != 2 {
		t.Fatalf("unexpected route round trip: %+v", back)
	}
}
