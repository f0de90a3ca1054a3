// Package numeric provides the real and complex arithmetic primitives the
// network solver is built on: a Complex value type and a dense, partial
// pivoted Gaussian solver over both fields.
package numeric

import "math"

// Complex is a real+imaginary pair. Values are immutable; every operation
// returns a new Complex rather than mutating the receiver, so callers never
// need to worry about aliasing a value they still hold a reference to.
type Complex struct {
	Re, Im float64
}

// Real lifts a real number into the complex field (imaginary part zero).
func Real(re float64) Complex { return Complex{Re: re} }

// FromPolar builds a phasor of the given magnitude and angle in degrees.
func FromPolar(magnitude, degrees float64) Complex {
	angle := degrees * math.Pi / 180
	return Complex{Re: magnitude * math.Cos(angle), Im: magnitude * math.Sin(angle)}
}

func (a Complex) Add(b Complex) Complex {
	return Complex{Re: a.Re + b.Re, Im: a.Im + b.Im}
}

func (a Complex) Sub(b Complex) Complex {
	return Complex{Re: a.Re - b.Re, Im: a.Im - b.Im}
}

func (a Complex) Mul(b Complex) Complex {
	return Complex{Re: a.Re*b.Re - a.Im*b.Im, Im: a.Re*b.Im + a.Im*b.Re}
}

// Div computes a/b using (a*conj(b))/|b|^2.
func (a Complex) Div(b Complex) Complex {
	denom := b.Re*b.Re + b.Im*b.Im
	return Complex{
		Re: (a.Re*b.Re + a.Im*b.Im) / denom,
		Im: (a.Im*b.Re - a.Re*b.Im) / denom,
	}
}

func (a Complex) Neg() Complex {
	return Complex{Re: -a.Re, Im: -a.Im}
}

func (a Complex) Conjugate() Complex {
	return Complex{Re: a.Re, Im: -a.Im}
}

// Abs is the magnitude |z| = hypot(re, im).
func (a Complex) Abs() float64 {
	return math.Hypot(a.Re, a.Im)
}

// AngleDegrees is atan2(im, re) expressed in degrees.
func (a Complex) AngleDegrees() float64 {
	return math.Atan2(a.Im, a.Re) * 180 / math.Pi
}
