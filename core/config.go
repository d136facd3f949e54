package core

import (
	"fmt"
	"strings"
)

// DefaultPermissionRequestCode tags permission requests issued for the
// capture session.
const DefaultPermissionRequestCode = 301

type JournalConfig struct {
	Disabled bool `koanf:"disabled" mapstructure:"disabled"`
}

type Config struct {
	ServiceName           string        `koanf:"service_name" mapstructure:"service_name"`
	PermissionRequestCode int           `koanf:"permission_request_code" mapstructure:"permission_request_code"`
	Journal               JournalConfig `koanf:"journal" mapstructure:"journal"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:           "idcapture",
		PermissionRequestCode: DefaultPermissionRequestCode,
		Journal:               JournalConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	// Android only honours the low 16 bits of a request code.
	if c.PermissionRequestCode <= 0 || c.PermissionRequestCode > 0xFFFF {
		return fmt.Errorf("core: permission_request_code must be between 1 and 65535, got %d", c.PermissionRequestCode)
	}
	return nil
}
