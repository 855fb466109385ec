package pkgng

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// LicenseLogic tells pkg how multiple licenses combine.
type LicenseLogic string

const (
	LicenseSingle LicenseLogic = "single"
	LicenseDual   LicenseLogic = "dual"
	LicenseMulti  LicenseLogic = "multi"
	LicenseOr     LicenseLogic = "or"
	LicenseAnd    LicenseLogic = "and"
)

// IsValid reports whether l is one of the values pkg understands.
func (l LicenseLogic) IsValid() bool {
	switch l {
	case LicenseSingle, LicenseDual, LicenseMulti, LicenseOr, LicenseAnd:
		return true
	default:
		return false
	}
}

// Defaults applied to fields left unset in Options.
const (
	DefaultLicense      = "unknown"
	DefaultLicenseLogic = LicenseSingle
	DefaultCategory     = "misc"
)

// Options are the user overrides for the pkgng packager. Zero values mean
// "use the default".
type Options struct {
	BaseName     string       `yaml:"base_package_name,omitempty"`
	Licenses     []string     `yaml:"licenses,omitempty"`
	LicenseLogic LicenseLogic `yaml:"licenselogic,omitempty"`
	Origin       string       `yaml:"origin,omitempty"`
	Comment      string       `yaml:"comment,omitempty"`
}

// Validate checks the values that were set.
func (o Options) Validate() error {
	for i, license := range o.Licenses {
		if strings.TrimSpace(license) == "" {
			return &ValidationError{Field: "licenses", Reason: fmt.Sprintf("not contain an empty entry (index %d)", i)}
		}
	}
	if o.LicenseLogic != "" && !o.LicenseLogic.IsValid() {
		return &ValidationError{Field: "licenselogic", Reason: "be one of single, dual, multi, or, and"}
	}
	// pkg keys packages by origin and expects a ports tree path.
	if o.Origin != "" {
		category, port, ok := strings.Cut(o.Origin, "/")
		if !ok || category == "" || port == "" || strings.Contains(port, "/") {
			return &ValidationError{Field: "origin", Reason: "have the form <category>/<name>"}
		}
	}
	return nil
}

// UnmarshalYAML decodes the pkgng block field by field so that a value of the
// wrong shape is reported against the field it was given for.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &ValidationError{Field: "pkgng", Reason: "be a mapping"}
	}

	var decoded Options
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		switch key {
		case "base_package_name":
			s, err := scalarString(key, value)
			if err != nil {
				return err
			}
			decoded.BaseName = s
		case "licenses":
			list, err := stringList(key, value)
			if err != nil {
				return err
			}
			decoded.Licenses = list
		case "licenselogic":
			s, err := scalarString(key, value)
			if err != nil {
				return err
			}
			decoded.LicenseLogic = LicenseLogic(s)
		case "origin":
			s, err := scalarString(key, value)
			if err != nil {
				return err
			}
			decoded.Origin = s
		case "comment":
			s, err := scalarString(key, value)
			if err != nil {
				return err
			}
			decoded.Comment = s
		default:
			return fmt.Errorf("line %d: unknown pkgng option %q", node.Content[i].Line, key)
		}
	}

	if err := decoded.Validate(); err != nil {
		return err
	}
	*o = decoded
	return nil
}

func scalarString(field string, node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		return "", &ValidationError{Field: field, Reason: "be a String"}
	}
	if strings.TrimSpace(node.Value) == "" {
		return "", &ValidationError{Field: field, Reason: "not be empty"}
	}
	return node.Value, nil
}

func stringList(field string, node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ValidationError{Field: field, Reason: "be a list of Strings"}
	}
	list := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, &ValidationError{Field: field, Reason: "be a list of Strings"}
		}
		list = append(list, item.Value)
	}
	return list, nil
}
