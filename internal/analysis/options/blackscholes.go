package options

import "math"

// NormCDF is the standard normal cumulative distribution
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// NormInv is the inverse of NormCDF for p in (0, 1)
func NormInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// d1d2 are the Black-Scholes terms for spot s, strike k, years t, rate r and volatility sigma
func d1d2(s, k, t, r, sigma float64) (float64, float64) {
	vt := sigma * math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+sigma*sigma/2)*t) / vt
	return d1, d1 - vt
}

// CallDelta is the Black-Scholes delta of a European call
func CallDelta(s, k, t, r, sigma float64) float64 {
	d1, _ := d1d2(s, k, t, r, sigma)
	return NormCDF(d1)
}

// CallPrice is the Black-Scholes value of a European call
func CallPrice(s, k, t, r, sigma float64) float64 {
	d1, d2 := d1d2(s, k, t, r, sigma)
	return s*NormCDF(d1) - k*math.Exp(-r*t)*NormCDF(d2)
}

// StrikeForDelta inverts CallDelta: the strike whose call has the target delta
func StrikeForDelta(s, delta, t, r, sigma float64) float64 {
	d1 := NormInv(delta)
	return s * math.Exp(-d1*sigma*math.Sqrt(t)+(r+sigma*sigma/2)*t)
}
