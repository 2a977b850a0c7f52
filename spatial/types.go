// Copyright 2025 The ChapaUY Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

const earthRadius = 6371e3 // meters

// Point represents a point in the plane. When the data is geographic, X is
// the longitude and Y the latitude.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return fromVec(r2.Add(p.vec(), q.vec()))
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return fromVec(r2.Sub(p.vec(), q.vec()))
}

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point {
	return fromVec(r2.Scale(f, p.vec()))
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return r2.Dot(p.vec(), q.vec())
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return r2.Norm(r2.Sub(p.vec(), q.vec()))
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// LatLng returns the point as (latitude, longitude), reading X as longitude.
func (p Point) LatLng() (float64, float64) {
	return p.Y, p.X
}

// String returns the WKT representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%s)", p.coords())
}

func (p Point) coords() string {
	return FormatFloat(p.X) + " " + FormatFloat(p.Y)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for DuckDB POINT_2D columns,
// which the driver returns as a struct map.
func (p *Point) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		p.X, p.Y = 0, 0

		return nil
	case map[string]interface{}:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.X = x
		p.Y = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// HaversineDistance calculates the distance between two geographic points in
// meters, reading X as longitude and Y as latitude.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Y * math.Pi / 180
	lat2 := other.Y * math.Pi / 180
	dLat := (other.Y - p.Y) * math.Pi / 180
	dLng := (other.X - p.X) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// LineString is a two point line, the only geometry this project emits.
type LineString struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// String returns the WKT representation, LINESTRING(x1 y1, x2 y2).
func (l LineString) String() string {
	return fmt.Sprintf("LINESTRING(%s, %s)", l.A.coords(), l.B.coords())
}

// Length returns the Euclidean length of the line.
func (l LineString) Length() float64 {
	return l.A.Distance(l.B)
}

// Value implements the driver.Valuer interface for database serialization.
func (l LineString) Value() (driver.Value, error) {
	return l.String(), nil
}

// Scan implements the sql.Scanner interface for WKT text columns.
func (l *LineString) Scan(value interface{}) error {
	var s string

	switch v := value.(type) {
	case nil:
		*l = LineString{}

		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("spatial: unsupported type for LineString scan: %T", value)
	}

	body, err := wktBody(s, "LINESTRING")
	if err != nil {
		return err
	}

	pts, err := parseCoords(body)
	if err != nil {
		return err
	}

	if len(pts) != 2 {
		return fmt.Errorf("spatial: expected two coordinates in %q, got %d", s, len(pts))
	}

	l.A, l.B = pts[0], pts[1]

	return nil
}

// FormatFloat renders f with the fewest digits that round-trip.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func wktBody(s, kind string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToUpper(s), kind) {
		return "", fmt.Errorf("spatial: expected %s, got %q", kind, s)
	}

	s = strings.TrimSpace(s[len(kind):])
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", fmt.Errorf("spatial: malformed %s %q", kind, s)
	}

	return s[1 : len(s)-1], nil
}

func parseCoords(body string) ([]Point, error) {
	var pts []Point

	for _, pair := range strings.Split(body, ",") {
		fields := strings.Fields(pair)
		if len(fields) != 2 {
			return nil, fmt.Errorf("spatial: malformed coordinate %q", pair)
		}

		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("spatial: parsing x: %w", err)
		}

		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("spatial: parsing y: %w", err)
		}

		pts = append(pts, Point{X: x, Y: y})
	}

	return pts, nil
}
