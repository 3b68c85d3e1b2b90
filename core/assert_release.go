//go:build !debug

package core

const assertsEnabled = false
