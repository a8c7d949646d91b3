// Package match re-establishes the link between tracked entries and live
// filesystem objects after a restart. Content fingerprints are the primary
// identity signal; trailing-path similarity only breaks ties between
// fingerprint-equal candidates.
package match

// ReversePathMatchScore measures how similar two paths' tails are. It walks
// both paths byte-wise from the end, counting matched bytes, and discounts
// separators and any dangling partial component so that only whole matching
// trailing components contribute. Identical single components score 2,
// each further matching component adds its length. The result is symmetric
// in its arguments.
func ReversePathMatchScore(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	i, j := len(a)-1, len(b)-1
	matched, separators, partial := 0, 0, 0
	for i >= 0 && j >= 0 && a[i] == b[j] {
		matched++
		if a[i] == '/' {
			separators++
			partial = 0
		} else {
			partial++
		}
		i--
		j--
	}
	if i < 0 && j < 0 {
		return matched - separators
	}
	return matched - separators - partial
}
