package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Required rejects blank values.
func Required(label string) Rule {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// MaxLength rejects values longer than n characters.
func MaxLength(label string, n int) Rule {
	return func(value string) error {
		if utf8.RuneCountInString(value) > n {
			return fmt.Errorf("%s must be at most %d characters", label, n)
		}
		return nil
	}
}

// Date rejects values that are not YYYY-MM-DD. Blank values pass; pair
// with Required when the date is mandatory.
func Date(label string) Rule {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s must be a date (YYYY-MM-DD)", label)
		}
		return nil
	}
}

// NotBefore rejects a date earlier than the date at otherPath. It passes
// when either side is blank or malformed; Date reports those.
func NotBefore(label, otherPath, otherLabel string) CrossRule {
	return func(src FieldSource, value string) error {
		other, _ := src.Value(otherPath)
		a, errA := time.Parse("2006-01-02", strings.TrimSpace(value))
		b, errB := time.Parse("2006-01-02", strings.TrimSpace(other))
		if errA != nil || errB != nil {
			return nil
		}
		if a.Before(b) {
			return fmt.Errorf("%s must not be before %s", label, otherLabel)
		}
		return nil
	}
}

// Between rejects a date outside [fromPath, toPath] when both bounds are
// valid dates.
func Between(label, fromPath, toPath string) CrossRule {
	return func(src FieldSource, value string) error {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(value))
		if err != nil {
			return nil
		}
		fromVal, _ := src.Value(fromPath)
		toVal, _ := src.Value(toPath)
		from, errFrom := time.Parse("2006-01-02", strings.TrimSpace(fromVal))
		to, errTo := time.Parse("2006-01-02", strings.TrimSpace(toVal))
		if errFrom != nil || errTo != nil {
			return nil
		}
		if d.Before(from) || d.After(to) {
			return fmt.Errorf("%s must fall between %s and %s", label, fromVal, toVal)
		}
		return nil
	}
}

// AtLeastOne fails when a repeated section has no active rows. Register it
// on a scalar anchor path of the step.
func AtLeastOne(section, message string) CrossRule {
	return func(src FieldSource, _ string) error {
		if len(src.ActiveRows(section)) == 0 {
			return errors.New(message)
		}
		return nil
	}
}
