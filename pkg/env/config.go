package env

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/probe"
)

// Variables read by ApplyRunConfig.
const (
	KeyBaseURL    = "CONTRACT_BASE_URL"
	KeyMaxWorkers = "CONTRACT_MAX_WORKERS"
	KeyTimeoutMs  = "CONTRACT_TIMEOUT_MS"
	KeyDeadlineMs = "CONTRACT_DEADLINE_MS"
	KeyRetries    = "CONTRACT_RETRIES"
	KeyHeaders    = "CONTRACT_HEADERS"
	KeyAuthToken  = "CONTRACT_AUTH_TOKEN"
	KeyJWTSecret  = "CONTRACT_JWT_SECRET"
	KeyJWTIssuer  = "CONTRACT_JWT_ISSUER"
	KeyJWTSubject = "CONTRACT_JWT_SUBJECT"
	KeyJWTTTLMs   = "CONTRACT_JWT_TTL_MS"
)

// ApplyRunConfig overlays the CONTRACT_* variables found in l onto
// cfg. Unset variables leave cfg untouched. Every malformed value
// is reported.
func ApplyRunConfig(l Loader, cfg *contract.RunConfig) error {
	var errs []error

	if v := l.Get(KeyBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if n, ok, err := intVar(l, KeyMaxWorkers); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.MaxWorkers = n
	}
	if d, ok, err := millisVar(l, KeyTimeoutMs); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.PerCaseTimeout = d
	}
	if d, ok, err := millisVar(l, KeyDeadlineMs); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.SuiteDeadline = d
	}
	if n, ok, err := intVar(l, KeyRetries); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Retries = n
	}

	if v := l.Get(KeyHeaders); v != "" {
		headers, err := ParseHeaders(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyHeaders, err))
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, hv := range headers {
			cfg.Headers[k] = hv
		}
	}

	if secret := l.Get(KeyJWTSecret); secret != "" {
		auth := &probe.AuthConfig{
			Type:    probe.AuthJWT,
			Secret:  secret,
			Issuer:  l.Get(KeyJWTIssuer),
			Subject: l.Get(KeyJWTSubject),
		}
		if d, ok, err := millisVar(l, KeyJWTTTLMs); err != nil {
			errs = append(errs, err)
		} else if ok {
			auth.TTL = d
		}
		cfg.Auth = auth
	} else if token := l.Get(KeyAuthToken); token != "" {
		cfg.Auth = &probe.AuthConfig{Type: probe.AuthBearer, Token: token}
	}

	return errors.Join(errs...)
}

// ParseHeaders parses "Name=value,Other=value" pairs.
func ParseHeaders(s string) (map[string]string, error) {
	headers := make(map[string]string)
	var bad []string
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			bad = append(bad, pair)
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	if len(bad) > 0 {
		return headers, fmt.Errorf("malformed header pairs: %s", strings.Join(bad, ", "))
	}
	return headers, nil
}

func intVar(l Loader, key string) (int, bool, error) {
	v := l.Get(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, true, nil
}

func millisVar(l Loader, key string) (time.Duration, bool, error) {
	n, ok, err := intVar(l, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	return time.Duration(n) * time.Millisecond, true, nil
}
