// Package device labels sessions with the browser and OS they were opened from.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints when enabled.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent returns a display name such as "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, platformName(ua)))
}

func platformName(ua *useragent.UserAgent) string {
	if os := strings.TrimSpace(ua.OS()); os != "" {
		return os
	}
	if p := strings.TrimSpace(ua.Platform()); p != "" {
		return p
	}
	return "Unknown OS"
}

// ComputeFingerprint hashes browser, browser major version and OS. Minor
// browser updates keep the same fingerprint.
func (s *Service) ComputeFingerprint(userAgent string) string {
	if !s.enabled || strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	sum := sha256.Sum256([]byte(strings.Join([]string{browser, major, platformName(ua), ua.Platform()}, "|")))
	return hex.EncodeToString(sum[:])
}
