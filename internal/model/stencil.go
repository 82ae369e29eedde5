package model

// cyclic maps an index onto the [0, n) ring, handling negative values.
func cyclic(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// advection evaluates the quadratic transport term of the Lorenz-96
// ring at index i:
//
//	-v[i-s] * (v[i-2s] - v[i+s])
//
// Orientation s = +1 gives the slow-variable form, s = -1 the
// fast-variable form. Both scales share this single stencil; only the
// orientation and the coupling source differ.
func advection(v []float64, i, n, s int) float64 {
	return -v[cyclic(i-s, n)] * (v[cyclic(i-2*s, n)] - v[cyclic(i+s, n)])
}
