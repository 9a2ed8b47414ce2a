package physics

// K returns the rate parameter of the model for a mass m (kg):
//
//	K(m) = 5120·π·G²·m³ / (ħ·c⁴)
//
// K is strictly increasing for m > 0.
func K(m float64) float64 {
	return (kCoefficient * G * G * m * m * m) / (Hbar * C * C * C * C)
}

// Rs returns the Schwarzschild radius 2·G·m/c², in metres, of a mass m (kg).
func Rs(m float64) float64 {
	return 2 * G * m / (C * C)
}
