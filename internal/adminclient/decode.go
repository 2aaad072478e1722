package adminclient

import (
	"time"

	"fodi-backend/internal/costcalc"
)

// checker collects the first validation failure while a wire record is
// copied into its typed form.
type checker struct {
	entity string
	err    *DecodeError
}

func (c *checker) fail(field, reason string) {
	if c.err == nil {
		c.err = &DecodeError{Entity: c.entity, Field: field, Reason: reason}
	}
}

func (c *checker) id(field string, v *uint) uint {
	if v == nil || *v == 0 {
		c.fail(field, "missing id")
		return 0
	}
	return *v
}

func (c *checker) text(field string, v *string) string {
	if v == nil || *v == "" {
		c.fail(field, "missing")
		return ""
	}
	return *v
}

func (c *checker) optText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (c *checker) num(field string, v *float64) float64 {
	if v == nil {
		c.fail(field, "missing")
		return 0
	}
	return *v
}

func (c *checker) nonNegative(field string, v *float64) float64 {
	n := c.num(field, v)
	if n < 0 {
		c.fail(field, "negative")
	}
	return n
}

func (c *checker) unit(field string, v *string) string {
	u := c.text(field, v)
	if u != "" && !costcalc.Unit(u).Known() {
		c.fail(field, "unknown unit "+u)
	}
	return u
}

func (c *checker) time(field string, v *string) time.Time {
	if v == nil || *v == "" {
		c.fail(field, "missing")
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		c.fail(field, "not an RFC 3339 time")
	}
	return t
}

func (c *checker) flag(field string, v *bool) bool {
	if v == nil {
		c.fail(field, "missing")
		return false
	}
	return *v
}

func (c *checker) result() error {
	if c.err != nil {
		return c.err
	}
	return nil
}
