package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// DeviceClass is the coarse device classification derived from the user agent.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
	DeviceUnknown DeviceClass = "unknown"
)

// RequestMetadata carries the request attributes the device profiler consumes.
type RequestMetadata struct {
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
	IP             string
}

// DeviceInfo is the immutable device snapshot computed per request and stored
// on the session at login.
type DeviceInfo struct {
	UserAgent   string      `json:"user_agent"`
	IP          string      `json:"ip"`
	Type        DeviceClass `json:"type"`
	Browser     string      `json:"browser"`
	OS          string      `json:"os"`
	Fingerprint string      `json:"fingerprint"`
}

// uaRule matches a user-agent substring to a label. Rules are evaluated in
// order; the first match wins.
type uaRule struct {
	needle string
	label  string
}

var deviceRules = []uaRule{
	{"ipad", string(DeviceTablet)},
	{"tablet", string(DeviceTablet)},
	{"mobile", string(DeviceMobile)},
	{"iphone", string(DeviceMobile)},
	{"android", string(DeviceMobile)},
	{"windows", string(DeviceDesktop)},
	{"macintosh", string(DeviceDesktop)},
	{"x11", string(DeviceDesktop)},
	{"linux", string(DeviceDesktop)},
}

var browserRules = []uaRule{
	{"edg/", "Edge"},
	{"opr/", "Opera"},
	{"chrome", "Chrome"},
	{"firefox", "Firefox"},
	{"safari", "Safari"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

var osRules = []uaRule{
	{"windows nt", "Windows"},
	{"iphone os", "iOS"},
	{"ipad", "iOS"},
	{"mac os x", "macOS"},
	{"android", "Android"},
	{"linux", "Linux"},
	{"cros", "ChromeOS"},
}

// ProfileDevice derives the device snapshot for a request. It is a pure
// function: identical metadata always yields an identical snapshot.
func ProfileDevice(meta RequestMetadata) DeviceInfo {
	ua := strings.ToLower(meta.UserAgent)

	return DeviceInfo{
		UserAgent:   meta.UserAgent,
		IP:          meta.IP,
		Type:        classifyDevice(ua),
		Browser:     matchRule(ua, browserRules, "Unknown"),
		OS:          matchRule(ua, osRules, "Unknown"),
		Fingerprint: Fingerprint(meta),
	}
}

func classifyDevice(loweredUA string) DeviceClass {
	if loweredUA == "" {
		return DeviceUnknown
	}
	if label := matchRule(loweredUA, deviceRules, ""); label != "" {
		return DeviceClass(label)
	}
	return DeviceUnknown
}

func matchRule(loweredUA string, rules []uaRule, fallback string) string {
	for _, rule := range rules {
		if strings.Contains(loweredUA, rule.needle) {
			return rule.label
		}
	}
	return fallback
}

// Fingerprint hashes the request metadata into a stable device identifier.
// Fields are length-prefixed before hashing so that shifting a boundary
// between adjacent fields changes the digest. The fingerprint is a similarity
// signal for trust scoring, not a security boundary.
func Fingerprint(meta RequestMetadata) string {
	h := sha256.New()
	for _, field := range []string{meta.UserAgent, meta.AcceptLanguage, meta.AcceptEncoding, meta.IP} {
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(field)))
		h.Write(size[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
