package domain

import "testing"

func TestProfileDeviceClassification(t *testing.T) {
	cases := []struct {
		name    string
		ua      string
		class   DeviceClass
		browser string
		os      string
	}{
		{
			name:    "chrome on windows",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			class:   DeviceDesktop,
			browser: "Chrome",
			os:      "Windows",
		},
		{
			name:    "safari on iphone",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			class:   DeviceMobile,
			browser: "Safari",
			os:      "iOS",
		},
		{
			name:    "ipad",
			ua:      "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			class:   DeviceTablet,
			browser: "Safari",
			os:      "iOS",
		},
		{
			name:    "firefox on linux",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			class:   DeviceDesktop,
			browser: "Firefox",
			os:      "Linux",
		},
		{
			name:    "edge picked over chrome",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			class:   DeviceDesktop,
			browser: "Edge",
			os:      "Windows",
		},
		{
			name:    "empty user agent",
			ua:      "",
			class:   DeviceUnknown,
			browser: "Unknown",
			os:      "Unknown",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			device := ProfileDevice(RequestMetadata{UserAgent: tc.ua, IP: "203.0.113.7"})
			if device.Type != tc.class {
				t.Fatalf("Type = %s, want %s", device.Type, tc.class)
			}
			if device.Browser != tc.browser {
				t.Fatalf("Browser = %s, want %s", device.Browser, tc.browser)
			}
			if device.OS != tc.os {
				t.Fatalf("OS = %s, want %s", device.OS, tc.os)
			}
		})
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	meta := RequestMetadata{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0",
		AcceptLanguage: "en-US,en;q=0.9",
		AcceptEncoding: "gzip, deflate, br",
		IP:             "203.0.113.7",
	}

	if Fingerprint(meta) != Fingerprint(meta) {
		t.Fatal("identical metadata should fingerprint identically")
	}
	if len(Fingerprint(meta)) != 64 {
		t.Fatalf("fingerprint length = %d, want 64 hex chars", len(Fingerprint(meta)))
	}

	changedIP := meta
	changedIP.IP = "203.0.113.8"
	if Fingerprint(meta) == Fingerprint(changedIP) {
		t.Fatal("changing a field should change the fingerprint")
	}
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	// "ab" + "c" and "a" + "bc" concatenate identically; the length prefix
	// must keep them distinct.
	left := RequestMetadata{UserAgent: "ab", AcceptLanguage: "c"}
	right := RequestMetadata{UserAgent: "a", AcceptLanguage: "bc"}

	if Fingerprint(left) == Fingerprint(right) {
		t.Fatal("shifting a field boundary should change the fingerprint")
	}
}
