package config

import "testing"

func TestParseHexUint16(t *testing.T) {
	cases := []struct {
		in       string
		fallback uint16
		want     uint16
	}{
		{"0x20A0", 0, 0x20A0},
		{"20A0", 0, 0x20A0},
		{"not-hex", 0x1111, 0x1111},
		{"", 0x1111, 0x1111},
	}
	for _, tt := range cases {
		if got := parseHexUint16(tt.in, tt.fallback); got != tt.want {
			t.Errorf("parseHexUint16(%q, %x) = %x, want %x", tt.in, tt.fallback, got, tt.want)
		}
	}
}

func TestParseEnvFileOverridesDefaults(t *testing.T) {
	cfg := &NitrokeyConfig{VendorID: defaultVendorID}
	parseEnvFile("NITROKEY_VID=0x1234\nNITROKEY_LOG_LEVEL=debug\n# comment\n", cfg)

	if cfg.VendorID != 0x1234 {
		t.Errorf("VendorID = %x, want 1234", cfg.VendorID)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}
