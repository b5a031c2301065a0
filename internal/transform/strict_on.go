//go:build celestdebug

package transform

const strictRotations = true
