package runtime

// Slope returns the ordinary least squares slope of ys over xs.
// Fewer than two points, or points sharing a single x, have no trend and
// yield zero.
func Slope(ys []float64, xs []int) float64 {
	n := len(ys)
	if len(xs) < n {
		n = len(xs)
	}
	if n < 2 {
		return 0
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += float64(xs[i])
		meanY += ys[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxy, sxx float64
	for i := 0; i < n; i++ {
		dx := float64(xs[i]) - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}
	return sxy / sxx
}
