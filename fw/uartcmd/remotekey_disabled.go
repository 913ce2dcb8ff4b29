//go:build noremotekey

package uartcmd

const remoteKeyEnabled = false
