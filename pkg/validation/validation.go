// Package validation runs request payloads through ordered per-field check
// chains and collects every failing field into a single list.
package validation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/errcodes"
)

type Location string

const (
	Body   Location = "body"
	Params Location = "params"
	Query  Location = "query"
)

// FieldError describes the first failed check of one field.
type FieldError struct {
	Value    any           `json:"value,omitempty"`
	Msg      string        `json:"msg"`
	Param    string        `json:"param"`
	Location Location      `json:"location"`
	Code     errcodes.Code `json:"code"`
}

type Errors []FieldError

func (e Errors) Error() string {
	params := make([]string, 0, len(e))
	for _, fe := range e {
		params = append(params, fe.Param+": "+string(fe.Code))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(params, ", "))
}

// Payload is a decoded request document. Nested fields are addressed with
// dotted paths such as "comment.text".
type Payload map[string]any

func (p Payload) Lookup(path string) (any, bool) {
	var cur any = map[string]any(p)
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// CheckFunc reports whether value passes. A non-nil error means the check
// itself could not run and aborts the whole validation.
type CheckFunc func(ctx context.Context, value any) (bool, error)

type check struct {
	code errcodes.Code
	args []any
	fn   CheckFunc
}

// Chain is the ordered list of checks for one field. It stops at the first
// failing check; an absent field fails its first check.
type Chain struct {
	param    string
	location Location
	checks   []check
}

var validate = newValidator()

// newValidator adds the "objectid" tag: any 24 character hex string,
// whatever its case, as accepted by primitive.ObjectIDFromHex.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		_, err := primitive.ObjectIDFromHex(fl.Field().String())
		return err == nil
	})
	return v
}

func Field(path string) *Chain {
	return &Chain{param: path, location: Body}
}

func Param(name string) *Chain {
	return &Chain{param: name, location: Params}
}

func QueryParam(name string) *Chain {
	return &Chain{param: name, location: Query}
}

func (c *Chain) add(code errcodes.Code, fn CheckFunc, args ...any) *Chain {
	c.checks = append(c.checks, check{code: code, args: args, fn: fn})
	return c
}

// Exists fails when the field is absent or null.
func (c *Chain) Exists(code errcodes.Code) *Chain {
	return c.add(code, func(_ context.Context, v any) (bool, error) {
		return v != nil, nil
	})
}

func (c *Chain) IsObject(code errcodes.Code) *Chain {
	return c.add(code, func(_ context.Context, v any) (bool, error) {
		_, ok := v.(map[string]any)
		return ok, nil
	})
}

func (c *Chain) IsString(code errcodes.Code) *Chain {
	return c.add(code, func(_ context.Context, v any) (bool, error) {
		_, ok := v.(string)
		return ok, nil
	})
}

// NotEmpty fails on strings that are empty or only whitespace.
func (c *Chain) NotEmpty(code errcodes.Code) *Chain {
	return c.add(code, func(_ context.Context, v any) (bool, error) {
		s, ok := v.(string)
		return ok && strings.TrimSpace(s) != "", nil
	})
}

// Tag validates a string field with a validator tag such as "objectid" or
// "max=300". Non-string values fail.
func (c *Chain) Tag(tag string, code errcodes.Code, args ...any) *Chain {
	return c.add(code, func(_ context.Context, v any) (bool, error) {
		s, ok := v.(string)
		if !ok {
			return false, nil
		}
		return validate.Var(s, tag) == nil, nil
	}, args...)
}

// Custom adds a check that may consult a store.
func (c *Chain) Custom(code errcodes.Code, fn CheckFunc, args ...any) *Chain {
	return c.add(code, fn, args...)
}

func (c *Chain) run(ctx context.Context, p Payload) (*FieldError, error) {
	value, present := p.Lookup(c.param)

	for _, chk := range c.checks {
		ok := false
		if present {
			var err error
			ok, err = chk.fn(ctx, value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c.param, err)
			}
		}
		if !ok {
			return &FieldError{
				Value:    value,
				Msg:      chk.code.Message(chk.args...),
				Param:    c.param,
				Location: c.location,
				Code:     chk.code,
			}, nil
		}
	}

	return nil, nil
}

// Run executes all chains concurrently against p and returns the field
// errors in chain declaration order. The error is non-nil only when a check
// failed to execute.
func Run(ctx context.Context, p Payload, chains ...*Chain) (Errors, error) {
	results := make([]*FieldError, len(chains))
	errs := make([]error, len(chains))

	var wg sync.WaitGroup
	for i, c := range chains {
		wg.Add(1)
		go func(i int, c *Chain) {
			defer wg.Done()
			results[i], errs[i] = c.run(ctx, p)
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var fieldErrs Errors
	for _, fe := range results {
		if fe != nil {
			fieldErrs = append(fieldErrs, *fe)
		}
	}

	return fieldErrs, nil
}
