package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/formatter"
)

// FormatterConfig is the decoded form of one formatter section.
type FormatterConfig struct {
	// Format is a JSON object string or a list of FormatItem.
	Format           any                      `mapstructure:"format"`
	DateFormat       string                   `mapstructure:"datefmt"`
	Timezone         string                   `mapstructure:"timezone"`
	Style            string                   `mapstructure:"style"`
	Attributes       []AttributeConfig        `mapstructure:"attributes" validate:"dive"`
	MixExtra         bool                     `mapstructure:"mix_extra"`
	MixExtraPosition string                   `mapstructure:"mix_extra_position" validate:"omitempty,oneof=none head tail mix"`
	Encoder          formatter.EncoderOptions `mapstructure:"encoder"`
}

// FormatItem is one entry of a list-form format specification.
type FormatItem struct {
	Key   string `mapstructure:"key" validate:"required"`
	Value any    `mapstructure:"value"`
}

// AttributeConfig declares a custom attribute. Exactly one of Expr,
// Rule and Value must be set.
type AttributeConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	// Expr is a CEL expression, see formatter.ExprRule.
	Expr string `mapstructure:"expr"`
	// Rule names a registered rule.
	Rule string `mapstructure:"rule"`
	// Value is a static value.
	Value any `mapstructure:"value"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report config keys rather than Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// decode converts a merged settings map into a FormatterConfig.
// Unknown keys are rejected.
func decode(section string, settings map[string]any) (FormatterConfig, error) {
	var cfg FormatterConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(settings); err != nil {
		return cfg, &formatter.ConfigurationError{Field: section, Reason: "cannot decode", Err: err}
	}
	if err := validateStruct(section, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateStruct(section string, v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &formatter.ConfigurationError{Field: section, Reason: "invalid", Err: err}
	}
	fe := verrs[0]
	field := fe.Namespace()
	// Drop the struct type name
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return &formatter.ConfigurationError{
		Field:  section + "." + field,
		Reason: validationReason(fe),
	}
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// Options converts the configuration into formatter options, resolving
// rule names through rules.
func (c FormatterConfig) Options(section string, rules *Registry) (formatter.Options, error) {
	format, err := formatValue(section, c.Format)
	if err != nil {
		return formatter.Options{}, err
	}

	if _, err := formatter.ParseStyle(c.Style); err != nil {
		return formatter.Options{}, &formatter.ConfigurationError{
			Field: section + ".style", Reason: "unknown style", Err: err,
		}
	}

	var loc *time.Location
	if c.Timezone != "" {
		loc, err = time.LoadLocation(c.Timezone)
		if err != nil {
			return formatter.Options{}, &formatter.ConfigurationError{
				Field: section + ".timezone", Reason: "unknown time zone", Err: err,
			}
		}
	}

	attrs := make([]formatter.Attribute, 0, len(c.Attributes))
	for _, a := range c.Attributes {
		rule, err := a.rule(section, rules)
		if err != nil {
			return formatter.Options{}, err
		}
		attrs = append(attrs, formatter.Attribute{Name: a.Name, Rule: rule})
	}

	return formatter.Options{
		Format:           format,
		DateFormat:       c.DateFormat,
		Location:         loc,
		Style:            c.Style,
		Attributes:       attrs,
		MixExtra:         c.MixExtra,
		MixExtraPosition: c.MixExtraPosition,
		Encoder:          c.Encoder,
	}, nil
}

func (a AttributeConfig) rule(section string, rules *Registry) (formatter.AttributeRule, error) {
	field := fmt.Sprintf("%s.attributes[%s]", section, a.Name)
	set := 0
	for _, ok := range []bool{a.Expr != "", a.Rule != "", a.Value != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return formatter.AttributeRule{}, &formatter.ConfigurationError{
			Field: field, Reason: "exactly one of expr, rule and value must be set",
		}
	}

	switch {
	case a.Expr != "":
		r, err := formatter.ExprRule(a.Expr)
		if err != nil {
			return r, &formatter.ConfigurationError{Field: field + ".expr", Reason: "invalid expression", Err: err}
		}
		return r, nil
	case a.Rule != "":
		r, ok := rules.Lookup(a.Rule)
		if !ok {
			return r, &formatter.ConfigurationError{
				Field: field + ".rule", Reason: fmt.Sprintf("unknown rule %q", a.Rule),
			}
		}
		return r, nil
	default:
		return formatter.StaticRule(a.Value), nil
	}
}

// formatValue turns the configured format into a value accepted by
// formatter.ParseFormatSpec.
func formatValue(section string, v any) (any, error) {
	switch val := v.(type) {
	case nil, string:
		return val, nil
	case []map[string]any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = item
		}
		return formatValue(section, items)
	case []any:
		m := core.NewOrderedMap()
		for i, raw := range val {
			var item FormatItem
			if err := mapstructure.Decode(raw, &item); err != nil {
				return nil, &formatter.ConfigurationError{
					Field: fmt.Sprintf("%s.format[%d]", section, i), Reason: "expected {key, value}", Err: err,
				}
			}
			if err := validateStruct(fmt.Sprintf("%s.format[%d]", section, i), item); err != nil {
				return nil, err
			}
			if _, dup := m.Get(item.Key); dup {
				return nil, &formatter.ConfigurationError{
					Field: fmt.Sprintf("%s.format[%d]", section, i), Reason: fmt.Sprintf("duplicate key %q", item.Key),
				}
			}
			m.Set(item.Key, item.Value)
		}
		return m, nil
	default:
		return nil, &formatter.ConfigurationError{
			Field:  section + ".format",
			Reason: fmt.Sprintf("must be a JSON object string or a list of {key, value}, got %T", v),
		}
	}
}
