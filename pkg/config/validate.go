// DS Controller
// Copyright (c) 2026 The DS Controller Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of DS Controller.
//
// DS Controller is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DS Controller is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DS Controller.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/dscontroller/dscontroller/pkg/calibration"
	"github.com/dscontroller/dscontroller/pkg/nds"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their file key
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("mapsbutton", validateMapsButton)
	_ = v.RegisterValidation("ndsbutton", validateButton)
	_ = v.RegisterValidation("controllercode", validateControllerCode)
	return v
}

// validateMapsButton requires at least one button bound to a key. Empty
// values are left unmapped.
func validateMapsButton(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	iter := field.MapRange()
	for iter.Next() {
		if iter.Value().String() != "" {
			return true
		}
	}
	return false
}

func validateButton(fl validator.FieldLevel) bool {
	return nds.IsButtonName(fl.Field().String())
}

func validateControllerCode(fl validator.FieldLevel) bool {
	return calibration.ControllerCode(fl.Field().String()).Validate() == nil
}

// Validate checks vals and returns an error wrapping ErrInvalid that lists
// every problem found.
func Validate(vals *Values) error {
	err := validate.Struct(vals)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	slices.Sort(msgs)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "mapsbutton":
		return field + " must map at least one button"
	case "ndsbutton":
		return fmt.Sprintf("%q is not a button, expected one of: %s",
			fe.Value(), strings.Join(nds.Names(), ", "))
	case "controllercode":
		return fmt.Sprintf("%s must be the %d character code printed by calibration",
			field, nds.NumButtons)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
