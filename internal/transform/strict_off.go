//go:build !celestdebug

package transform

// strictRotations makes failed orthonormality checks panic. Enabled by the
// celestdebug build tag.
const strictRotations = false
