//go:build rp2040

package main

const mcuName = "rp2040"
