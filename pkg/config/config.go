// Pomelo uses flags and a single config file for configuration.
// A config file is stored in JSON format; its top-level keys are command line flag names and its values are the
// scalar values to apply to them. Flags not named in the file keep their defaults, so a config file only has to
// mention what it changes.

package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var configFilePath = flag.String("config_file", "", "Path to the JSON configuration file; empty skips loading.")

// structValueToString converts a JSON scalar to its string representation suitable for flag setting.
func structValueToString(value *structpb.Value) (string, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue), nil
	case *structpb.Value_NumberValue:
		// JSON numbers are doubles. The 'f' format keeps integral values free of an exponent, so integer flags can
		// parse them back.
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), nil
	case *structpb.Value_ListValue:
		return "", errors.New("list values are not supported, flags take scalars only")
	case *structpb.Value_StructValue:
		return "", errors.New("nested objects are not supported, config keys are flat flag names")
	default:
		return "", fmt.Errorf("unsupported value kind: %T", kind)
	}
}

// applyConfig sets each top-level key of `conf` to its same-named command line flag. All problems are collected and
// reported together; keys that apply cleanly take effect even when others fail.
func applyConfig(conf *structpb.Struct) error {
	var errs []error
	for flagName, value := range conf.GetFields() {
		if flag.Lookup(flagName) == nil {
			errs = append(errs, fmt.Errorf("config key '%s' does not match any defined flag", flagName))
			continue
		}
		if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull {
			// Null means keep the flag's default.
			continue
		}
		stringValue, convErr := structValueToString(value)
		if convErr != nil {
			errs = append(errs, fmt.Errorf("config key '%s': %w", flagName, convErr))
			continue
		}
		if setErr := flag.Set(flagName, stringValue); setErr != nil {
			errs = append(errs, fmt.Errorf("failed to set flag %s: %w", flagName, setErr))
		}
	}
	return errors.Join(errs...)
}

// LoadFile parses the JSON config at `path` into its flat flag-name to value structure.
func LoadFile(path string) (*structpb.Struct, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	conf := new(structpb.Struct)
	if err := protojson.Unmarshal(configBytes, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return conf, nil
}

// Apply loads the JSON config at `path` and sets every key to its same-named flag.
func Apply(path string) error {
	conf, err := LoadFile(path)
	if err != nil {
		return err
	}
	return applyConfig(conf)
}

// InitFlags initializes the flags from the config file specified by the -config_file flag.
// It should be called after defining all flags and before using them. Config problems are logged, not fatal;
// whatever fails to apply keeps its default.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Info("Config file not specified. Skipping config initialization.")
		return
	}
	if err := Apply(*configFilePath); err != nil {
		slog.Error("Failed to apply config file.", "path", *configFilePath, "error", err)
	}
}
