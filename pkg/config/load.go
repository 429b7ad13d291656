package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/arthur-debert/template-ci/pkg/errors"
	"github.com/arthur-debert/template-ci/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// MetadataKey is the key under [package.metadata] holding the configuration.
const MetadataKey = "template_ci"

// EnvPrefix starts every environment variable that overrides a setting.
const EnvPrefix = "TEMPLATE_CI_"

// Only scalar settings can be overridden from the environment.
var envKeys = map[string]string{
	"CACHE":                   "cache",
	"OS":                      "os",
	"DIST":                    "dist",
	"VERSIONS":                "versions",
	"TEST_COMMANDLINE":        "test_commandline",
	"SCHEDULED_TEST_BRANCHES": "scheduled_test_branches",
	"TEST_SCHEDULE":           "test_schedule",
}

// LoadFile reads one TOML configuration file. A missing file is reported as
// ErrConfigNotFound so the caller can move on to the next source; any other
// failure is ErrConfigParse.
func LoadFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigNotFound, "%s does not exist", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not read %s", path).
			WithDetail("source", path)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrConfigParse, "%s is a directory", path).
			WithDetail("source", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not parse %s", path).
			WithDetail("source", path)
	}
	return decode(k, path)
}

// FromMetadata builds the configuration from a package.metadata table.
// Missing metadata, or metadata without a template_ci key, yields Default.
func FromMetadata(metadata map[string]interface{}, origin string) (*Config, error) {
	raw, ok := metadata[MetadataKey]
	if !ok || raw == nil {
		logger := logging.GetLogger("config.load")
		logger.Debug().
			Str("source", origin).
			Msg("No template_ci metadata, using defaults")
		k := koanf.New(".")
		return decode(k, origin)
	}

	table, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrConfigParse, "%s: package.metadata.%s must be a table, got %T", origin, MetadataKey, raw).
			WithDetail("source", origin)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(table, ""), nil); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not load metadata from %s", origin).
			WithDetail("source", origin)
	}
	return decode(k, origin)
}

// decode validates the document, applies environment overrides and
// resolves the result against the defaults.
func decode(k *koanf.Koanf, origin string) (*Config, error) {
	logger := logging.GetLogger("config.load")

	if err := validateDocument(k.Raw()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "invalid configuration in %s", origin).
			WithDetail("source", origin)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load environment overrides")
	}

	var src Source
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &src,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				timeoutHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &src, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "could not decode %s", origin).
			WithDetail("source", origin)
	}

	cfg := src.Resolve()
	logger.Debug().
		Str("source", origin).
		Int("additionalEntries", len(cfg.AdditionalMatrixEntries)).
		Msg("Configuration decoded")
	return cfg, nil
}

func envKey(s string) string {
	return envKeys[strings.TrimPrefix(s, EnvPrefix)]
}

var durationType = reflect.TypeOf(time.Duration(0))

// timeoutHookFunc reads a timeout given as whole seconds or as a
// {secs, nanos} table. Duration strings are left to
// StringToTimeDurationHookFunc.
func timeoutHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if data == nil || t != durationType || f == durationType {
			return data, nil
		}

		if table, ok := data.(map[string]interface{}); ok {
			var secs, nanos int64
			for key, v := range table {
				n, ok := toInt64(v)
				if !ok || n < 0 {
					return nil, fmt.Errorf("timeout %s must be a non-negative integer, got %v", key, v)
				}
				switch key {
				case "secs":
					secs = n
				case "nanos":
					nanos = n
				default:
					return nil, fmt.Errorf("unknown timeout field %q", key)
				}
			}
			return time.Duration(secs)*time.Second + time.Duration(nanos), nil
		}

		if f.Kind() == reflect.Float32 || f.Kind() == reflect.Float64 {
			secs := reflect.ValueOf(data).Float()
			if secs < 0 {
				return nil, fmt.Errorf("timeout must not be negative, got %v", data)
			}
			return time.Duration(secs * float64(time.Second)), nil
		}

		if n, ok := toInt64(data); ok {
			if n < 0 {
				return nil, fmt.Errorf("timeout must not be negative, got %d", n)
			}
			return time.Duration(n) * time.Second, nil
		}
		return data, nil
	}
}

func toInt64(v interface{}) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		fv := rv.Float()
		if fv != float64(int64(fv)) {
			return 0, false
		}
		return int64(fv), true
	}
	return 0, false
}
