package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
)

const (
	KeyNodeEnv            = "NODE_ENV"
	KeyIsProd             = "IS_PROD"
	KeyDBConnectionString = "DB_CONNECTION_STRING"
	KeyPort               = "PORT"
	KeyAllowedOrigins     = "ALLOWED_ORIGINS"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	schemaKeys = []string{KeyNodeEnv, KeyIsProd, KeyDBConnectionString, KeyPort, KeyAllowedOrigins}
)

// Config is the validated startup configuration of the service.
//
// A Config is only ever handed out fully validated. It is created once at
// process start and must be treated as read-only afterwards.
type Config struct {
	NodeEnv            Environment
	IsProd             bool
	DBConnectionString string
	Port               int
	AllowedOrigins     []string

	// Extra holds every key of the raw source that is not part of the
	// schema. Values are passed through unchecked.
	Extra map[string]string
}

// ListenAddr is the TCP address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// LogValue keeps database credentials out of the logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("node_env", string(c.NodeEnv)),
		slog.Bool("is_prod", c.IsProd),
		slog.String("db", RedactURL(c.DBConnectionString)),
		slog.Int("port", c.Port),
		slog.Any("allowed_origins", c.AllowedOrigins),
	)
}

// RedactURL masks the password of a connection string.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable>"
	}
	return u.Redacted()
}

// record is the coerced, not yet validated, form of a raw source.
// A nil Port or AllowedOrigins means the value is absent or could not be
// coerced.
type record struct {
	NodeEnv            string   `env:"NODE_ENV" validate:"required,oneof=production development testing staging"`
	IsProd             bool     `env:"IS_PROD"`
	DBConnectionString string   `env:"DB_CONNECTION_STRING" validate:"required,url"`
	Port               *int     `env:"PORT" validate:"required,min=0,max=65535"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" validate:"required,dive,url"`
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// Load reads the process configuration source and parses it.
func Load(overridePath string) (*Config, error) {
	return Parse(ReadSource(overridePath))
}

// Parse coerces and validates a raw key/value source.
//
// Coercion failures (a non-numeric PORT, a malformed ALLOWED_ORIGINS
// document) are reported in the same *ValidationError as schema failures,
// so a single error always lists every failing key.
func Parse(raw map[string]string) (*Config, error) {
	rec, issues := coerce(raw)

	schemaIssues, err := validate(rec)
	if err != nil {
		return nil, err
	}

	// A coercion issue already explains why the value is missing.
	coerceFailed := lo.SliceToMap(issues, func(i Issue) (string, struct{}) { return baseField(i.Field), struct{}{} })
	for _, issue := range schemaIssues {
		if _, ok := coerceFailed[baseField(issue.Field)]; ok {
			continue
		}
		issues = append(issues, issue)
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	return &Config{
		NodeEnv:            Environment(rec.NodeEnv),
		IsProd:             rec.IsProd,
		DBConnectionString: rec.DBConnectionString,
		Port:               *rec.Port,
		AllowedOrigins:     rec.AllowedOrigins,
		Extra:              extraKeys(raw),
	}, nil
}

func coerce(raw map[string]string) (record, []Issue) {
	var issues []Issue

	rec := record{
		NodeEnv:            raw[KeyNodeEnv],
		IsProd:             raw[KeyNodeEnv] == string(EnvProduction),
		DBConnectionString: raw[KeyDBConnectionString],
	}

	if value, ok := raw[KeyPort]; ok && value != "" {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			issues = append(issues, Issue{Field: KeyPort, Tag: "number", Reason: fmt.Sprintf("not a number (got %q)", value)})
		} else {
			rec.Port = &port
		}
	}

	if value, ok := raw[KeyAllowedOrigins]; ok && value != "" {
		var origins []string
		if err := json.Unmarshal([]byte(value), &origins); err != nil {
			issues = append(issues, Issue{Field: KeyAllowedOrigins, Tag: "json", Reason: fmt.Sprintf("expected a JSON array of strings: %v", err)})
		} else {
			// "null" stays nil and fails as a missing value; "[]" is a valid empty list.
			if origins == nil && strings.TrimSpace(value) != "null" {
				origins = []string{}
			}
			rec.AllowedOrigins = origins
		}
	}

	return rec, issues
}

func validate(rec record) ([]Issue, error) {
	err := newValidator().Struct(rec)
	if err == nil {
		return nil, nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, fmt.Errorf("error validating configuration: %w", err)
	}

	issues := make([]Issue, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		issues = append(issues, Issue{Field: fe.Field(), Tag: fe.Tag(), Reason: describe(fe)})
	}
	return issues, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s] (got %q)", strings.Join(strings.Fields(fe.Param()), ", "), fe.Value())
	case "url":
		return fmt.Sprintf("must be a valid URL (got %q)", fe.Value())
	case "min", "max":
		return fmt.Sprintf("must be between 0 and 65535 (got %v)", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func extraKeys(raw map[string]string) map[string]string {
	extra := make(map[string]string, len(raw))
	for key, value := range raw {
		if slices.Contains(schemaKeys, key) {
			continue
		}
		extra[key] = value
	}
	return extra
}
