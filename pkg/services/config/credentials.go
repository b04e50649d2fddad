package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// CredentialProfile holds warehouse connection settings loaded from an ini
// profile file. Backends pick the fields they need.
type CredentialProfile struct {
	Host      string
	Port      string
	User      string
	Password  string
	Database  string
	SSLMode   string
	Account   string
	Warehouse string
	Role      string
	HTTPPath  string
	Token     string
}

// DefaultProfile is the section used when the caller does not name one.
const DefaultProfile = "default"

// LoadProfile reads one named section from an ini credentials file.
func LoadProfile(path, profile string) (*CredentialProfile, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if profile == "" {
		profile = DefaultProfile
	}
	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %q not found in %s", profile, path)
	}

	return &CredentialProfile{
		Host:      section.Key("host").String(),
		Port:      section.Key("port").String(),
		User:      section.Key("user").String(),
		Password:  section.Key("password").String(),
		Database:  section.Key("database").String(),
		SSLMode:   section.Key("sslmode").String(),
		Account:   section.Key("account").String(),
		Warehouse: section.Key("warehouse").String(),
		Role:      section.Key("role").String(),
		HTTPPath:  section.Key("http_path").String(),
		Token:     section.Key("token").String(),
	}, nil
}

// Profiles lists the non-empty sections of an ini credentials file.
func Profiles(path string) ([]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var profiles []string
	for _, section := range cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}
