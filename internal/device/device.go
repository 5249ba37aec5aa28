// Package device derives the device metadata that accompanies fingerprinting
// and analytics payloads.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
)

// Metadata is the coarse device description sent alongside engine setup and
// analytics uploads. It intentionally excludes volatile identifiers such as
// IP addresses.
type Metadata struct {
	InstallationID string `json:"installation_id"`
	Platform       string `json:"platform"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	Fingerprint    string `json:"fingerprint"`
}

// Collector produces stable metadata for one installation.
type Collector struct {
	installationID string
	userAgentRaw   string
}

// NewCollector builds a collector for the host's user-agent string. The
// installation id is minted once per collector.
func NewCollector(userAgentString string) *Collector {
	return &Collector{
		installationID: uuid.New().String(),
		userAgentRaw:   userAgentString,
	}
}

// Collect derives the metadata. Safe to call repeatedly; the result is
// deterministic for a given collector.
func (c *Collector) Collect() Metadata {
	meta := Metadata{
		InstallationID: c.installationID,
		Platform:       "desktop",
		Browser:        "unknown",
		BrowserVersion: "unknown",
		OS:             "unknown",
	}
	if c.userAgentRaw == "" {
		return meta
	}

	ua := useragent.New(c.userAgentRaw)
	browser, version := ua.Browser()

	if version != "" {
		parts := strings.Split(version, ".")
		if len(parts) > 0 && parts[0] != "" {
			meta.BrowserVersion = parts[0]
		}
	}
	if b := strings.ToLower(strings.TrimSpace(browser)); b != "" {
		meta.Browser = b
	}
	if os := strings.ToLower(strings.TrimSpace(ua.OS())); os != "" {
		meta.OS = os
	}
	if ua.Mobile() {
		meta.Platform = "mobile"
	}

	data := fmt.Sprintf("%s|%s|%s|%s", meta.Browser, meta.BrowserVersion, meta.OS, meta.Platform)
	hash := sha256.Sum256([]byte(data))
	meta.Fingerprint = hex.EncodeToString(hash[:])
	return meta
}
