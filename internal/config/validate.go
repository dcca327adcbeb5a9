package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Finalize parses the derived fields and validates the whole configuration.
// Call it after every override has been applied. Explicit zero values are
// rejected, not replaced by defaults.
func (c *Config) Finalize() error {
	if err := validate.Struct(c); err != nil {
		return describeValidation(err)
	}

	var err error
	if c.HTTPTimeoutDuration, err = parseDuration(c.HTTPTimeout, false); err != nil {
		return fmt.Errorf("http_timeout: %w", err)
	}
	if c.WSTimeoutDuration, err = parseDuration(c.WSTimeout, false); err != nil {
		return fmt.Errorf("ws_timeout: %w", err)
	}
	if c.ThrottleDuration, err = parseDuration(c.Throttle, true); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}

	if err = c.validateEndpoints(); err != nil {
		return err
	}

	if c.Methods != "" && c.MethodSet != "" {
		return errors.New("methods and method_set cannot be used together")
	}

	if err = validateOutputDir(c.Output); err != nil {
		return err
	}

	if c.Influx.Enabled {
		if c.Influx.Database == "" {
			return errors.New("influx: database is required")
		}
		if c.Influx.SampleRatePct, err = parsePercent(c.Influx.SampleRate); err != nil {
			return fmt.Errorf("influx: %w", err)
		}
	}

	return nil
}

func (c *Config) validateEndpoints() error {
	if err := requireScheme("eth_rpc", c.EthRPC, "http", "https"); err != nil {
		return err
	}
	if err := requireScheme("bsc_rpc", c.BscRPC, "http", "https"); err != nil {
		return err
	}
	if c.EthWS != "" {
		if err := requireScheme("eth_ws", c.EthWS, "ws", "wss"); err != nil {
			return err
		}
	}
	if c.BscWS != "" {
		if err := requireScheme("bsc_ws", c.BscWS, "ws", "wss"); err != nil {
			return err
		}
	}

	seen := map[string]bool{
		NameEthHTTP: true,
		NameBscHTTP: true,
		NameEthWS:   true,
		NameBscWS:   true,
	}
	for _, ep := range c.Endpoints {
		if seen[ep.Name] {
			return fmt.Errorf("endpoint %q: duplicate name", ep.Name)
		}
		seen[ep.Name] = true
		if err := requireScheme(fmt.Sprintf("endpoint %q", ep.Name), ep.URL, "http", "https", "ws", "wss"); err != nil {
			return err
		}
	}

	return nil
}

func requireScheme(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", field, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: URL %q has no host", field, raw)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("%s: scheme must be one of %s, got %q", field, strings.Join(schemes, ", "), u.Scheme)
}

func validateOutputDir(output string) error {
	dir := filepath.Dir(output)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output: directory %q does not exist", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("output: %q is not a directory", dir)
	}
	return nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describeField(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", field, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
