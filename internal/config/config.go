// Package config loads Nitrokey connection settings from a .env file and
// the environment, following the same load-once/override pattern the
// rest of this codebase's components use for their own configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// NitrokeyConfig holds the settings a Manager needs to find and talk to
// a device.
type NitrokeyConfig struct {
	VendorID        uint16
	ProductIDPro    uint16
	ProductIDStorage uint16
	PollTimeout     time.Duration
	LogLevel        string
}

var (
	nitrokeyConfig *NitrokeyConfig
	configLoaded   bool
)

// defaults mirror the published Nitrokey USB identities (model.go) and a
// conservative poll timeout.
const (
	defaultVendorID     = 0x20A0
	defaultProductPro   = 0x4108
	defaultProductStore = 0x4109
	defaultPollTimeout  = 500 * time.Millisecond
	defaultLogLevel     = "info"
)

// LoadNitrokeyConfig loads settings once, preferring a .env file in the
// project root and letting real environment variables override it.
func LoadNitrokeyConfig() (*NitrokeyConfig, error) {
	if nitrokeyConfig != nil && configLoaded {
		return nitrokeyConfig, nil
	}

	cfg := &NitrokeyConfig{
		VendorID:         defaultVendorID,
		ProductIDPro:     defaultProductPro,
		ProductIDStorage: defaultProductStore,
		PollTimeout:      defaultPollTimeout,
		LogLevel:         defaultLogLevel,
	}

	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")

	if data, err := os.ReadFile(envPath); err == nil {
		parseEnvFile(string(data), cfg)
	}

	if v := os.Getenv("NITROKEY_VID"); v != "" {
		cfg.VendorID = parseHexUint16(v, cfg.VendorID)
	}
	if v := os.Getenv("NITROKEY_PID_PRO"); v != "" {
		cfg.ProductIDPro = parseHexUint16(v, cfg.ProductIDPro)
	}
	if v := os.Getenv("NITROKEY_PID_STORAGE"); v != "" {
		cfg.ProductIDStorage = parseHexUint16(v, cfg.ProductIDStorage)
	}
	if v := os.Getenv("NITROKEY_POLL_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.PollTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("NITROKEY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	nitrokeyConfig = cfg
	configLoaded = true
	return cfg, nil
}

func parseEnvFile(content string, cfg *NitrokeyConfig) {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "NITROKEY_VID":
			cfg.VendorID = parseHexUint16(value, cfg.VendorID)
		case "NITROKEY_PID_PRO":
			cfg.ProductIDPro = parseHexUint16(value, cfg.ProductIDPro)
		case "NITROKEY_PID_STORAGE":
			cfg.ProductIDStorage = parseHexUint16(value, cfg.ProductIDStorage)
		case "NITROKEY_POLL_TIMEOUT_MS":
			if ms, err := strconv.Atoi(value); err == nil {
				cfg.PollTimeout = time.Duration(ms) * time.Millisecond
			}
		case "NITROKEY_LOG_LEVEL":
			cfg.LogLevel = value
		}
	}
}

func parseHexUint16(s string, fallback uint16) uint16 {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return fallback
	}
	return uint16(v)
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}
