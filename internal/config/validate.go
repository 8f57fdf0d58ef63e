package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
)

// tokenPattern matches the Bot API token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Validate checks the structural validity of a Config after defaults
// have been applied. All problems are reported at once.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := net.ResolveTCPAddr("tcp", cfg.Bind); err != nil {
		errs = append(errs, fmt.Errorf("config: invalid bind address %q", cfg.Bind))
	}

	if cfg.BaseURL == "" {
		errs = append(errs, errors.New("config: base_url is required"))
	} else if err := validateOrigin(cfg.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("config: base_url: %w", err))
	}

	if cfg.MasterToken == "" {
		errs = append(errs, errors.New("config: master_token is required"))
	} else if !tokenPattern.MatchString(cfg.MasterToken) {
		errs = append(errs, errors.New("config: master_token format invalid (expected <bot_id>:<hash>)"))
	}

	if err := validateOrigin(cfg.LinkBase); err != nil {
		errs = append(errs, fmt.Errorf("config: link_base: %w", err))
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log_level must be debug, info, warn, or error, got %q", cfg.LogLevel))
	}

	if cfg.Database.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: database.busy_timeout must be non-negative, got %d", cfg.Database.BusyTimeout))
	}

	if err := validateOrigin(cfg.Telegram.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("config: telegram.api_url: %w", err))
	}

	return errors.Join(errs...)
}

// validateOrigin requires a parseable http or https URL.
func validateOrigin(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be a valid http/https URL, got %q", raw)
	}
	return nil
}
