package rtc

import (
	"fmt"
	"strings"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

var defaultICEServers = []string{"stun:stun.l.google.com:19302"}

// ICEServers turns configured URLs into the RTCIceServer list handed to
// browsers. The relay itself never opens peer connections.
func ICEServers(urls []string) ([]webrtc.ICEServer, error) {
	if len(urls) == 0 {
		urls = defaultICEServers
	}
	servers := make([]webrtc.ICEServer, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, err := stun.ParseURI(raw); err != nil {
			return nil, fmt.Errorf("ice server %q: %w", raw, err)
		}
		servers = append(servers, webrtc.ICEServer{URLs: []string{raw}})
	}
	return servers, nil
}
