//go:build !noremotekey

package uartcmd

// remoteKeyEnabled compiles the remote key injection feature in. Build with
// -tags noremotekey to ship without it; button events then ack as invalid.
const remoteKeyEnabled = true
