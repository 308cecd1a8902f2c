package conversation

import (
	"net"
	"net/http"
	"strings"
)

// Fingerprinter derives the client identity used to resume a
// conversation. The widget is anonymous, so the default strategy is the
// client IP; a session-token scheme can be swapped in here without
// touching the rest of the pipeline.
type Fingerprinter interface {
	Fingerprint(r *http.Request) string
}

// IPFingerprinter identifies a client by its leftmost public IP.
type IPFingerprinter struct{}

var headerOrder = []string{"X-Forwarded-For", "X-Real-Ip", "Client-Ip"}

// Fingerprint walks the forwarding headers, taking the first valid
// public address, and falls back to the socket peer.
func (IPFingerprinter) Fingerprint(r *http.Request) string {
	for _, header := range headerOrder {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		for _, part := range strings.Split(value, ",") {
			ip := net.ParseIP(strings.TrimSpace(part))
			if ip != nil && isPublic(ip) {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return "127.0.0.1"
}

func isPublic(ip net.IP) bool {
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsLinkLocalUnicast() && !ip.IsUnspecified()
}
