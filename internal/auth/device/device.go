// Package device renders a short human-readable label from a client's
// User-Agent header, for the login audit trail.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent summarizes a raw User-Agent as "Browser on Platform".
// An empty header yields "Unknown Device".
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.OSInfo().Name
	if ua.Mobile() {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}

	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, platform))
}
