package net

import (
	"log"
	"net"
	"time"
)

const dialTimeout = 2 * time.Second

// GetOutgoingIP finds the preferred local IP address for the share link.
// routeAddr is only used to pick a route; no packet is sent.
func GetOutgoingIP(routeAddr string) (string, error) {
	conn, err := net.DialTimeout("udp", routeAddr, dialTimeout)
	if err != nil {
		// No route out, fall back to checking local interfaces.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// Online reports whether the host has a route to routeAddr, which is the
// closest equivalent of a browser's online flag.
func Online(routeAddr string) bool {
	conn, err := net.DialTimeout("udp", routeAddr, dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// getLocalIPFallback is used on networks without a default route.
func getLocalIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	log.Println("[NET] No suitable local IP found, share link will use loopback")
	return "127.0.0.1", nil
}
