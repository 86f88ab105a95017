package geolib

import (
	"net"
	"strings"
)

// QueryClass is a class of the forward query.
type QueryClass uint8

const (
	QueryAddress QueryClass = iota
	QueryIPv4
	QueryIPv6
)

func (q QueryClass) IsIP() bool {
	return q != QueryAddress
}

// ClassifyQuery detects if query is an IP address. IPv4-mapped IPv6
// addresses are reported as IPv4.
func ClassifyQuery(query string) QueryClass {
	ip := net.ParseIP(strings.TrimSpace(query))

	switch {
	case ip == nil:
		return QueryAddress
	case ip.To4() != nil:
		return QueryIPv4
	}

	return QueryIPv6
}

// IsLoopback checks if query is a loopback IP address like 127.0.0.1
// or ::1.
func IsLoopback(query string) bool {
	ip := net.ParseIP(strings.TrimSpace(query))

	return ip != nil && ip.IsLoopback()
}
