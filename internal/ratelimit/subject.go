package ratelimit

import (
	"fmt"
	"net"
	"strings"
)

// SubjectForIP returns the limiter subject for a client address. IPv4 and
// IPv4-mapped IPv6 addresses are returned in dotted form; other IPv6
// addresses collapse to their /64 network, written as
// "xxxx:xxxx:xxxx:xxxx::/64", so every host in one /64 shares a counter.
// Unparseable input is returned trimmed and unchanged.
func SubjectForIP(addr string) string {
	addr = strings.TrimSpace(addr)
	ip := net.ParseIP(addr)
	if ip == nil {
		return addr
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	ip = ip.To16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x:%02x%02x::/64",
		ip[0], ip[1], ip[2], ip[3], ip[4], ip[5], ip[6], ip[7])
}
