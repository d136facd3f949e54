package core

import (
	"fmt"
	"sort"
	"strings"
)

type optionKind string

const (
	optionKindBoolean    optionKind = "boolean"
	optionKindString     optionKind = "string"
	optionKindStringList optionKind = "string list"
)

// ConfigIssue describes a recognized option whose value had the wrong type.
// The option keeps its prior value.
type ConfigIssue struct {
	Key      string
	Expected string
	Got      string
}

func (i ConfigIssue) String() string {
	return fmt.Sprintf("option %q expects %s, got %s", i.Key, i.Expected, i.Got)
}

type optionBinding struct {
	key    string
	kind   optionKind
	decode func(cfg *SessionConfig, raw any) bool
}

func boolOption(key string, set func(cfg *SessionConfig, value bool)) optionBinding {
	return optionBinding{
		key:  key,
		kind: optionKindBoolean,
		decode: func(cfg *SessionConfig, raw any) bool {
			value, ok := raw.(bool)
			if !ok {
				return false
			}
			set(cfg, value)
			return true
		},
	}
}

func stringOption(key string, set func(cfg *SessionConfig, value string)) optionBinding {
	return optionBinding{
		key:  key,
		kind: optionKindString,
		decode: func(cfg *SessionConfig, raw any) bool {
			value, ok := raw.(string)
			if !ok {
				return false
			}
			set(cfg, value)
			return true
		},
	}
}

func stringListOption(key string, set func(cfg *SessionConfig, values []string)) optionBinding {
	return optionBinding{
		key:  key,
		kind: optionKindStringList,
		decode: func(cfg *SessionConfig, raw any) bool {
			values, ok := stringList(raw)
			if !ok {
				return false
			}
			set(cfg, values)
			return true
		},
	}
}

// stringList accepts a nil array as empty, mirroring a host null array.
// Non-string entries of a generic array are skipped.
func stringList(raw any) ([]string, bool) {
	switch typed := raw.(type) {
	case nil:
		return []string{}, true
	case []string:
		return append([]string{}, typed...), true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if value, ok := item.(string); ok {
				out = append(out, value)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

var optionBindings = []optionBinding{
	boolOption("requireVerification", func(cfg *SessionConfig, value bool) {
		cfg.RequireVerification = &value
	}),
	stringOption("callbackUrl", func(cfg *SessionConfig, value string) {
		cfg.CallbackURL = &value
	}),
	boolOption("requireFaceMatch", func(cfg *SessionConfig, value bool) {
		cfg.RequireFaceMatch = &value
	}),
	stringOption("preselectedCountry", func(cfg *SessionConfig, value string) {
		cfg.PreselectedCountry = &value
	}),
	stringOption("merchantScanReference", func(cfg *SessionConfig, value string) {
		cfg.MerchantScanReference = &value
	}),
	stringOption("merchantReportingCriteria", func(cfg *SessionConfig, value string) {
		cfg.MerchantReportingCriteria = &value
	}),
	stringOption("customerID", func(cfg *SessionConfig, value string) {
		cfg.CustomerID = &value
	}),
	stringOption("additionalInformation", func(cfg *SessionConfig, value string) {
		cfg.AdditionalInformation = &value
	}),
	boolOption("enableEpassport", func(cfg *SessionConfig, value bool) {
		cfg.EnableEpassport = &value
	}),
	boolOption("sendDebugInfoToJumio", func(cfg *SessionConfig, value bool) {
		cfg.SendDebugInfo = &value
	}),
	boolOption("dataExtractionOnMobileOnly", func(cfg *SessionConfig, value bool) {
		cfg.DataExtractionOnMobileOnly = &value
	}),
	stringOption("cameraPosition", func(cfg *SessionConfig, value string) {
		position := ParseCameraPosition(value)
		cfg.CameraPosition = &position
	}),
	stringOption("preselectedDocumentVariant", func(cfg *SessionConfig, value string) {
		variant := ParseDocumentVariant(value)
		cfg.DocumentVariant = &variant
	}),
	stringListOption("documentTypes", func(cfg *SessionConfig, values []string) {
		cfg.DocumentTypes = ParseDocumentTypes(values)
	}),
}

var optionIndex = indexOptionBindings(optionBindings)

func indexOptionBindings(bindings []optionBinding) map[string]optionBinding {
	index := make(map[string]optionBinding, len(bindings))
	for _, binding := range bindings {
		index[strings.ToLower(binding.key)] = binding
	}
	return index
}

// OptionKeys lists the recognized option names in declaration order.
func OptionKeys() []string {
	keys := make([]string, 0, len(optionBindings))
	for _, binding := range optionBindings {
		keys = append(keys, binding.key)
	}
	return keys
}

// ApplyOptions maps bag onto cfg. Keys match case-insensitively and are
// visited in sorted order, so when two spellings of one key are present the
// lexicographically last one wins. Unknown keys are ignored; wrong-typed
// values leave the field untouched and are returned as issues.
func ApplyOptions(cfg *SessionConfig, bag OptionsBag) []ConfigIssue {
	if cfg == nil || len(bag) == 0 {
		return nil
	}
	keys := make([]string, 0, len(bag))
	for key := range bag {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []ConfigIssue
	for _, key := range keys {
		binding, ok := optionIndex[strings.ToLower(key)]
		if !ok {
			continue
		}
		raw := bag[key]
		if binding.decode(cfg, raw) {
			continue
		}
		issues = append(issues, ConfigIssue{
			Key:      key,
			Expected: string(binding.kind),
			Got:      describeOptionValue(raw),
		})
	}
	return issues
}

// DecodeOptions returns a fresh SessionConfig built from bag.
func DecodeOptions(bag OptionsBag) (SessionConfig, []ConfigIssue) {
	cfg := SessionConfig{}
	issues := ApplyOptions(&cfg, bag)
	return cfg, issues
}

// UnknownOptionKeys returns the keys of bag that no binding recognizes.
func UnknownOptionKeys(bag OptionsBag) []string {
	unknown := make([]string, 0)
	for key := range bag {
		if _, ok := optionIndex[strings.ToLower(key)]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func describeOptionValue(raw any) string {
	if raw == nil {
		return "null"
	}
	return fmt.Sprintf("%T", raw)
}
