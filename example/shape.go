package example

import "math"

//starbind:compile Shape, variants, methods,

// Shape is a closed set of plane figures.
//
//starbind:enumeration
//starbind:implementation
type Shape interface{ isShape() }

// Square is the unit square.
type Square struct{}

// Circle is a circle of radius R. It carries data, so scripts build it
// with Shape.new_circle rather than as a variant.
type Circle struct{ R float64 }

func (Square) isShape() {}
func (Circle) isShape() {}

// NewCircle returns a circle of radius r.
func NewCircle(r float64) Shape { return Circle{R: r} }

// Area returns the area of s.
//
//starbind:static Shape
func Area(s Shape) float64 {
	switch s := s.(type) {
	case Square:
		return 1
	case Circle:
		return math.Pi * s.R * s.R
	}
	return 0
}
