// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagBinder lets a struct type register its own flags. Fields whose
// types implement FlagBinder are bound through AddFlags instead of
// tag reflection.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams builds a command's flag set from the tagged fields
// of params, which must be a pointer to a struct. Invalid params are
// a programming error, so this panics rather than returning an error.
//
//	var params runParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("run", &params) },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        // params carries the parsed flag values here
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a pflag entry for every tagged field of params,
// a pointer to a struct.
//
// Three tags drive the binding: `flag:"name"` or `flag:"name,n"` for
// the flag name and optional one-letter shorthand, `desc:"..."` for
// the help text, and `default:"..."` parsed according to the field
// type. Fields without a flag tag are skipped.
//
// Supported field types: string, bool, int, int64, float64,
// [time.Duration], and []string (comma-separated default).
//
// Struct-typed fields, named or embedded, bind through [FlagBinder]
// when they implement it; embedded structs without it are walked
// recursively so composition like [JSONOutput] works.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params is %T, need a pointer to a struct", params)
	}
	return walkFields(value.Elem(), flagSet)
}

// walkFields binds each field of a struct value, recursing into
// embedded structs.
func walkFields(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Type.Kind() == reflect.Struct {
			// FlagBinder wins over tag reflection. The field must be
			// exported for reflect to hand out its address.
			if field.IsExported() && fieldValue.CanAddr() {
				if binder, ok := fieldValue.Addr().Interface().(FlagBinder); ok {
					binder.AddFlags(flagSet)
					continue
				}
			}
			if field.Anonymous {
				if err := walkFields(fieldValue, flagSet); err != nil {
					return fmt.Errorf("embedded %s: %w", field.Name, err)
				}
				continue
			}
		}

		tag := field.Tag.Get("flag")
		if tag == "" {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}

		name, shorthand, _ := strings.Cut(tag, ",")
		err := registerFlag(fieldValue, flagSet, name, shorthand,
			field.Tag.Get("desc"), field.Tag.Get("default"))
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

// registerFlag binds one field to one pflag entry.
func registerFlag(fieldValue reflect.Value, flagSet *pflag.FlagSet, name, shorthand, description, rawDefault string) error {
	switch target := fieldValue.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(target, name, shorthand, rawDefault, description)

	case *bool:
		value, err := parseDefault(name, rawDefault, strconv.ParseBool)
		if err != nil {
			return err
		}
		flagSet.BoolVarP(target, name, shorthand, value, description)

	case *int:
		value, err := parseDefault(name, rawDefault, strconv.Atoi)
		if err != nil {
			return err
		}
		flagSet.IntVarP(target, name, shorthand, value, description)

	case *int64:
		value, err := parseDefault(name, rawDefault, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		})
		if err != nil {
			return err
		}
		flagSet.Int64VarP(target, name, shorthand, value, description)

	case *float64:
		value, err := parseDefault(name, rawDefault, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err != nil {
			return err
		}
		flagSet.Float64VarP(target, name, shorthand, value, description)

	case *time.Duration:
		value, err := parseDefault(name, rawDefault, time.ParseDuration)
		if err != nil {
			return err
		}
		flagSet.DurationVarP(target, name, shorthand, value, description)

	case *[]string:
		var value []string
		if rawDefault != "" {
			value = strings.Split(rawDefault, ",")
		}
		flagSet.StringSliceVarP(target, name, shorthand, value, description)

	default:
		return fmt.Errorf("flag --%s: no binding for type %s", name, fieldValue.Type())
	}

	return nil
}

// parseDefault parses a default tag value with the given parser,
// treating the empty string as the type's zero value.
func parseDefault[T any](flagName, raw string, parse func(string) (T, error)) (T, error) {
	var zero T
	if raw == "" {
		return zero, nil
	}
	value, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("default for --%s: %w", flagName, err)
	}
	return value, nil
}
