package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/utils"
)

const csvDateLayout = "2006-01-02"

// column reads and writes one CSV field of a T.
type column[T any] struct {
	name string
	get  func(*T) string
	set  func(*T, string) error
	// money columns are summed in report footers
	money bool
}

func badValue(name string, msg string) error {
	return utils.NewValidationError(name, msg)
}

func strCol[T any](name string, field func(*T) *string) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return *field(r) },
		set: func(r *T, v string) error {
			*field(r) = v
			return nil
		},
	}
}

func enumCol[T any, E ~string](name string, field func(*T) *E) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return string(*field(r)) },
		set: func(r *T, v string) error {
			*field(r) = E(strings.TrimSpace(v))
			return nil
		},
	}
}

func strPtrCol[T any](name string, field func(*T) **string) column[T] {
	return column[T]{
		name: name,
		get: func(r *T) string {
			if p := *field(r); p != nil {
				return *p
			}
			return ""
		},
		set: func(r *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*field(r) = nil
				return nil
			}
			*field(r) = &v
			return nil
		},
	}
}

func intCol[T any](name string, field func(*T) *int) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.Itoa(*field(r)) },
		set: func(r *T, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return badValue(name, "not a whole number: "+v)
			}
			*field(r) = n
			return nil
		},
	}
}

func intPtrCol[T any](name string, field func(*T) **int) column[T] {
	return column[T]{
		name: name,
		get: func(r *T) string {
			if p := *field(r); p != nil {
				return strconv.Itoa(*p)
			}
			return ""
		},
		set: func(r *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*field(r) = nil
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return badValue(name, "not a whole number: "+v)
			}
			*field(r) = &n
			return nil
		},
	}
}

func decCol[T any](name string, field func(*T) *decimal.Decimal) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return field(r).String() },
		set: func(r *T, v string) error {
			if strings.TrimSpace(v) == "" {
				*field(r) = decimal.Zero
				return nil
			}
			d, err := utils.ParseAmount(v)
			if err != nil {
				return badValue(name, "not a number: "+v)
			}
			*field(r) = d
			return nil
		},
	}
}

func moneyCol[T any](name string, field func(*T) *decimal.Decimal) column[T] {
	c := decCol(name, field)
	c.money = true
	return c
}

func dateCol[T any](name string, field func(*T) *time.Time) column[T] {
	return column[T]{
		name: name,
		get: func(r *T) string {
			if field(r).IsZero() {
				return ""
			}
			return field(r).Format(csvDateLayout)
		},
		set: func(r *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*field(r) = time.Time{}
				return nil
			}
			t, err := time.Parse(csvDateLayout, v)
			if err != nil {
				return badValue(name, "not a YYYY-MM-DD date: "+v)
			}
			*field(r) = t
			return nil
		},
	}
}

func boolCol[T any](name string, field func(*T) *bool) column[T] {
	return column[T]{
		name: name,
		get:  func(r *T) string { return strconv.FormatBool(*field(r)) },
		set: func(r *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*field(r) = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return badValue(name, "not true or false: "+v)
			}
			*field(r) = b
			return nil
		},
	}
}
