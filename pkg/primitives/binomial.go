package primitives

// Binomial returns C(n, k), the number of k-element subsets of an n-element set.
// It returns 0 when k < 0 or k > n.
func Binomial(n, k int) int64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := int64(1)
	for i := 1; i <= k; i++ {
		// Exact at every step: the running product is C(n-k+i, i).
		result = result * int64(n-k+i) / int64(i)
	}
	return result
}
