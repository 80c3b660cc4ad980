// MIT License
//
// Copyright (c) 2025-2026 The swrcache authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package validation provides a small assertion/validator chain used to
// validate configuration values before a component starts.
package validation

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validator validates a single rule and reports a violation as an error.
type Validator interface {
	// Validate executes the validation rule.
	Validate() error
}

// Chain accumulates validators and runs them in order.
type Chain struct {
	validators []Validator
	violations []error
	failFast   bool
}

// Option configures a validation Chain.
type Option func(*Chain)

// FailFast stops the chain at the first violation.
func FailFast() Option {
	return func(c *Chain) {
		c.failFast = true
	}
}

// AllErrors runs every validator and aggregates all violations.
func AllErrors() Option {
	return func(c *Chain) {
		c.failFast = false
	}
}

// New creates a validation Chain. The default behavior is AllErrors.
func New(opts ...Option) *Chain {
	chain := &Chain{}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// AddValidator appends a validator to the chain.
func (c *Chain) AddValidator(validator Validator) *Chain {
	c.validators = append(c.validators, validator)
	return c
}

// AddAssertion appends a boolean assertion to the chain. When the assertion
// does not hold, Validate reports the given message.
func (c *Chain) AddAssertion(assertion bool, message string) *Chain {
	c.validators = append(c.validators, NewBooleanValidator(assertion, message))
	return c
}

// Validate runs the chain and returns nil when every rule holds.
// With FailFast the first violation is returned immediately; otherwise all
// violations are aggregated into a single error.
func (c *Chain) Validate() error {
	for _, validator := range c.validators {
		if err := validator.Validate(); err != nil {
			if c.failFast {
				return err
			}
			c.violations = append(c.violations, err)
		}
	}

	if len(c.violations) == 0 {
		return nil
	}

	messages := make([]string, len(c.violations))
	for i, violation := range c.violations {
		messages[i] = violation.Error()
	}
	return errors.New(strings.Join(messages, "; "))
}

// booleanValidator asserts that a condition holds.
type booleanValidator struct {
	assertion bool
	message   string
}

// NewBooleanValidator creates a validator that fails with the given message
// when the assertion is false.
func NewBooleanValidator(assertion bool, message string) Validator {
	return &booleanValidator{
		assertion: assertion,
		message:   message,
	}
}

// Validate implements Validator.
func (v *booleanValidator) Validate() error {
	if !v.assertion {
		return errors.New(v.message)
	}
	return nil
}

// emptyStringValidator asserts that a string field is set.
type emptyStringValidator struct {
	fieldName  string
	fieldValue string
}

// NewEmptyStringValidator creates a validator that fails when fieldValue is
// empty.
func NewEmptyStringValidator(fieldName, fieldValue string) Validator {
	return &emptyStringValidator{
		fieldName:  fieldName,
		fieldValue: fieldValue,
	}
}

// Validate implements Validator.
func (v *emptyStringValidator) Validate() error {
	if strings.TrimSpace(v.fieldValue) == "" {
		return fmt.Errorf("the [%s] is required", v.fieldName)
	}
	return nil
}

// tcpAddressValidator asserts that an address is a valid host:port pair.
type tcpAddressValidator struct {
	address string
}

// NewTCPAddressValidator creates a validator that fails when the address is
// not a valid TCP host:port pair.
func NewTCPAddressValidator(address string) Validator {
	return &tcpAddressValidator{address: address}
}

// Validate implements Validator.
func (v *tcpAddressValidator) Validate() error {
	host, port, err := net.SplitHostPort(v.address)
	if err != nil {
		return fmt.Errorf("invalid address=(%s): %w", v.address, err)
	}
	if host == "" || port == "" {
		return fmt.Errorf("invalid address=(%s)", v.address)
	}
	return nil
}

// conditionalValidator runs the wrapped validator only when the condition
// holds.
type conditionalValidator struct {
	condition bool
	validator Validator
}

// NewConditionalValidator creates a validator that delegates to the given
// validator only when condition is true.
func NewConditionalValidator(condition bool, validator Validator) Validator {
	return &conditionalValidator{
		condition: condition,
		validator: validator,
	}
}

// Validate implements Validator.
func (v *conditionalValidator) Validate() error {
	if v.condition {
		return v.validator.Validate()
	}
	return nil
}
