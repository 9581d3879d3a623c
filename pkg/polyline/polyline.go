// Package polyline encodes map paths in Google's encoded polyline format
// (precision 5), as consumed by the mobile map views.
package polyline

import (
	"errors"
	"math"
)

// ErrTruncated is returned when an encoded string ends mid-value.
var ErrTruncated = errors.New("polyline: truncated input")

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the bounding box of a path.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Builder encodes a path incrementally. Consecutive points that round to the
// same position are collapsed. The zero value is ready to use.
type Builder struct {
	buf    []byte
	lat    int
	lon    int
	n      int
	bounds Bounds
}

// Add appends a point to the path.
func (b *Builder) Add(lat, lon float64) {
	ilat := int(math.Round(lat * 1e5))
	ilon := int(math.Round(lon * 1e5))
	if b.n > 0 && ilat == b.lat && ilon == b.lon {
		return
	}

	b.buf = appendValue(b.buf, ilat-b.lat)
	b.buf = appendValue(b.buf, ilon-b.lon)
	b.lat, b.lon = ilat, ilon

	if b.n == 0 {
		b.bounds = Bounds{South: lat, West: lon, North: lat, East: lon}
	} else {
		b.bounds.South = math.Min(b.bounds.South, lat)
		b.bounds.North = math.Max(b.bounds.North, lat)
		b.bounds.West = math.Min(b.bounds.West, lon)
		b.bounds.East = math.Max(b.bounds.East, lon)
	}
	b.n++
}

// Len returns the number of encoded points.
func (b *Builder) Len() int { return b.n }

// Bounds returns the bounding box of the added points, or false when empty.
func (b *Builder) Bounds() (Bounds, bool) {
	return b.bounds, b.n > 0
}

// String returns the encoded path.
func (b *Builder) String() string { return string(b.buf) }

// Encode encodes a path in one call.
func Encode(points []Point) string {
	var b Builder
	for _, p := range points {
		b.Add(p.Lat, p.Lon)
	}
	return b.String()
}

// Decode parses an encoded path.
func Decode(encoded string) ([]Point, error) {
	var (
		points   []Point
		lat, lon int
	)
	for i := 0; i < len(encoded); {
		dlat, next, err := readValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dlon, next, err := readValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next
		lat += dlat
		lon += dlon
		points = append(points, Point{Lat: float64(lat) / 1e5, Lon: float64(lon) / 1e5})
	}
	return points, nil
}

// appendValue writes one zigzag-encoded delta in 5-bit chunks.
func appendValue(buf []byte, v int) []byte {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		buf = append(buf, byte(0x20|(u&0x1f))+63)
		u >>= 5
	}
	return append(buf, byte(u)+63)
}

func readValue(s string, i int) (int, int, error) {
	var result, shift int
	for {
		if i >= len(s) {
			return 0, i, ErrTruncated
		}
		c := int(s[i]) - 63
		i++
		result |= (c & 0x1f) << shift
		shift += 5
		if c < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}
