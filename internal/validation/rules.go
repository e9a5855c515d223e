/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// NewAssertion fails with message when ok is false
func NewAssertion(ok bool, message string) Validator {
	return ValidatorFunc(func() error {
		if ok {
			return nil
		}
		return errors.New(message)
	})
}

// NewRatioValidator checks that value lies in the open interval (0, 1)
func NewRatioValidator(name string, value float64) Validator {
	return ValidatorFunc(func() error {
		if value <= 0 || value >= 1 {
			return fmt.Errorf("%s must be in (0, 1), got %v", name, value)
		}
		return nil
	})
}

// NewPathSegmentValidator checks that value can be used as one segment of
// an actor path
func NewPathSegmentValidator(kind, value string) Validator {
	return ValidatorFunc(func() error {
		switch {
		case strings.TrimSpace(value) == "":
			return fmt.Errorf("%s must not be blank", kind)
		case strings.Contains(value, "/"):
			return fmt.Errorf("%s must not contain '/'", kind)
		}
		return nil
	})
}
