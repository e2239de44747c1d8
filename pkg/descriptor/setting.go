package descriptor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Setting errors.
var (
	// ErrUndefinedSettingType signals a misconfigured descriptor whose
	// setting type was never assigned. This is a programming error on the
	// integration side, not a user-input problem.
	ErrUndefinedSettingType = errors.New("setting type is undefined")

	// ErrUncastableValue signals a raw value that cannot be interpreted
	// as an integer for casting.
	ErrUncastableValue = errors.New("value cannot be cast")
)

// SettingType identifies the kind of a settable value.
type SettingType uint8

const (
	SettingTypeUndefined SettingType = iota
	SettingTypeNumber
	SettingTypeBoolean
	SettingTypeEnum
)

// String returns the setting type name.
func (s SettingType) String() string {
	switch s {
	case SettingTypeNumber:
		return "number"
	case SettingTypeBoolean:
		return "boolean"
	case SettingTypeEnum:
		return "enum"
	default:
		return "undefined"
	}
}

// SetterFunc is the function signature for setting writers.
type SetterFunc func(ctx context.Context, value any) error

// SettingDescriptor describes a settable value exposed by the device.
type SettingDescriptor struct {
	Descriptor

	// Property is the key into the device's cached property store.
	Property string

	// Unit is the unit of measurement, if any.
	Unit string

	// SettingType identifies the value kind for casting.
	SettingType SettingType

	// SetterName names the setter method on the owning device, if bound
	// by name.
	SetterName string

	// Setter is the writer, if bound directly.
	Setter SetterFunc
}

// CastValue casts a raw value to the type expected by the setting.
// Boolean settings cast through an integer truth test, enum and number
// settings cast to int64. An undefined setting type returns
// ErrUndefinedSettingType.
func (d *SettingDescriptor) CastValue(raw any) (any, error) {
	switch d.SettingType {
	case SettingTypeBoolean:
		n, err := castInt(raw)
		if err != nil {
			return nil, err
		}
		return n != 0, nil
	case SettingTypeEnum, SettingTypeNumber:
		return castInt(raw)
	default:
		return nil, fmt.Errorf("%w: setting %q", ErrUndefinedSettingType, d.ID)
	}
}

// castInt interprets a raw value as an integer. Accepts booleans, all
// integer and float widths, and numeric strings.
func castInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUncastableValue, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUncastableValue, raw)
	}
}

// BooleanSettingDescriptor describes a settable boolean value.
type BooleanSettingDescriptor struct {
	SettingDescriptor
}

// NewBooleanSetting creates a boolean setting descriptor.
func NewBooleanSetting(d SettingDescriptor) *BooleanSettingDescriptor {
	d.SettingType = SettingTypeBoolean
	d.ValueType = ValueTypeBool
	return &BooleanSettingDescriptor{SettingDescriptor: d}
}

// Choice is one legal value of an enum setting.
type Choice struct {
	// Name is the human-readable choice name.
	Name string

	// Value is the wire value.
	Value int
}

// EnumSettingDescriptor describes a settable enumerated value.
type EnumSettingDescriptor struct {
	SettingDescriptor

	// Choices is the static choice set. A device implementing
	// ChoicesProvider overrides it at read time.
	Choices []Choice
}

// NewEnumSetting creates an enum setting descriptor.
func NewEnumSetting(d SettingDescriptor, choices []Choice) *EnumSettingDescriptor {
	d.SettingType = SettingTypeEnum
	d.ValueType = ValueTypeEnum
	return &EnumSettingDescriptor{SettingDescriptor: d, Choices: choices}
}

// ValidRange describes legal input bounds for a numeric setting.
type ValidRange struct {
	// Min is the smallest accepted value.
	Min int

	// Max is the largest accepted value.
	Max int

	// Step is the accepted value granularity.
	Step int
}

// Contains returns true if value falls on the range.
func (r ValidRange) Contains(value int) bool {
	if value < r.Min || value > r.Max {
		return false
	}
	if r.Step > 1 && (value-r.Min)%r.Step != 0 {
		return false
	}
	return true
}

// NumberSettingDescriptor describes a settable numeric value.
type NumberSettingDescriptor struct {
	SettingDescriptor

	// MinValue is the static lower bound. A device implementing
	// RangeProvider overrides the static bounds at read time.
	MinValue int

	// MaxValue is the static upper bound.
	MaxValue int

	// Step is the static value granularity.
	Step int
}

// NewNumberSetting creates a number setting descriptor.
func NewNumberSetting(d SettingDescriptor, min, max, step int) *NumberSettingDescriptor {
	d.SettingType = SettingTypeNumber
	d.ValueType = ValueTypeInt
	return &NumberSettingDescriptor{
		SettingDescriptor: d,
		MinValue:          min,
		MaxValue:          max,
		Step:              step,
	}
}

// Range returns the static bounds as a ValidRange.
func (d *NumberSettingDescriptor) Range() ValidRange {
	return ValidRange{Min: d.MinValue, Max: d.MaxValue, Step: d.Step}
}

// RangeProvider yields the current valid range for a named setting.
// Devices whose numeric bounds depend on runtime state implement this.
type RangeProvider interface {
	SettingRange(property string) (ValidRange, bool)
}

// ChoicesProvider yields the current choice set for a named setting.
// Devices whose enum choices depend on runtime state implement this.
type ChoicesProvider interface {
	SettingChoices(property string) ([]Choice, bool)
}

// ResolveRange returns the valid range for a numeric setting, preferring
// the owner's RangeProvider over the descriptor's static bounds.
func ResolveRange(d *NumberSettingDescriptor, owner any) ValidRange {
	if p, ok := owner.(RangeProvider); ok {
		if r, ok := p.SettingRange(d.Property); ok {
			return r
		}
	}
	return d.Range()
}

// ResolveChoices returns the choice set for an enum setting, preferring
// the owner's ChoicesProvider over the descriptor's static choices.
func ResolveChoices(d *EnumSettingDescriptor, owner any) []Choice {
	if p, ok := owner.(ChoicesProvider); ok {
		if c, ok := p.SettingChoices(d.Property); ok {
			return c
		}
	}
	return d.Choices
}
