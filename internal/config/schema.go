package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeDuration
	TypeString
	TypeEnum
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key as written in the config file
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// Settable reports whether 'rulesync config set' can write the key.
// Lists have to be edited in the file.
func (s ConfigKeySchema) Settable() bool {
	return s.Type != TypeList
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"workspace": {
		Path:        "workspace",
		Type:        TypeString,
		Description: "Workspace root (empty = git work tree, else current dir)",
		Default:     "",
	},
	"instructions_name": {
		Path:        "instructions_name",
		Type:        TypeString,
		Description: "File name of the instructions document under .github/instructions/",
		Default:     "copilot.instructions.md",
	},
	"auto_inject": {
		Path:        "auto_inject",
		Type:        TypeBool,
		Description: "Sync the instructions document in 'rulesync startup'",
		Default:     true,
	},
	"update_gitignore": {
		Path:        "update_gitignore",
		Type:        TypeBool,
		Description: "Maintain managed patterns in .gitignore on sync and watch",
		Default:     true,
	},
	"startup_delay": {
		Path:        "startup_delay",
		Type:        TypeDuration,
		Description: "Delay before 'rulesync startup' syncs",
		Default:     "2s",
	},
	"on_read_error": {
		Path:          "on_read_error",
		Type:          TypeEnum,
		AllowedValues: []string{"overwrite", "preserve"},
		Description:   "What sync does with an unreadable instructions document",
		Default:       "overwrite",
	},
	"skip_confirmations": {
		Path:        "skip_confirmations",
		Type:        TypeBool,
		Description: "Skip confirmation prompts",
		Default:     false,
	},
	"managed_patterns": {
		Path:        "managed_patterns",
		Type:        TypeList,
		Description: "List of {comment, pattern} entries kept in .gitignore",
	},
	"log_level": {
		Path:          "log_level",
		Type:          TypeEnum,
		AllowedValues: []string{"debug", "info", "warn", "error"},
		Description:   "Minimum level written to stderr",
		Default:       "warn",
	},
	"log_file": {
		Path:        "log_file",
		Type:        TypeString,
		Description: "Append JSON logs to this file (empty = disabled)",
		Default:     "",
	},
	"log_journal": {
		Path:        "log_journal",
		Type:        TypeBool,
		Description: "Also send logs to the systemd journal",
		Default:     false,
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the known key names in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeDuration:
		return parseDurationValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	case TypeList:
		return ParsedValue{}, fmt.Errorf("%s is a list; edit it in the config file", schema.Path)
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseDurationValue parses and validates a duration value.
func parseDurationValue(value string) (ParsedValue, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return ParsedValue{}, fmt.Errorf("invalid duration: %q (examples: 500ms, 2s, 1m)", value)
	}
	return ParsedValue{Raw: value, Parsed: d.String(), Type: TypeDuration}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
