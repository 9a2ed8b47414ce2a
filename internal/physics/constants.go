// Package physics holds the physical constants of the critical-mass model and
// the closed-form quantities derived from them.
package physics

import "math"

// ─────────────────────────────────────────────────────────────────────────────
// Physical Constants (SI units)
// ─────────────────────────────────────────────────────────────────────────────

const (
	// H is the rate constant of the model, in s⁻¹.
	H = 2.18e-18

	// G is the Newtonian gravitational constant, in m³·kg⁻¹·s⁻².
	G = 6.67430e-11

	// C is the speed of light in vacuum, in m·s⁻¹.
	C = 299_792_458

	// PlanckH is the Planck constant, in J·s.
	PlanckH = 6.62607015e-34

	// Hbar is the reduced Planck constant h/2π.
	Hbar = PlanckH / (2 * math.Pi)
)

// kCoefficient is the numeric prefactor of K(m).
const kCoefficient = 5120 * math.Pi
