package toolkit

import (
	"context"
	"time"

	"github.com/chris/tablemate/internal/tools"
)

type Clock struct {
	now func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (c *Clock) Operations() []tools.Operation {
	return []tools.Operation{{
		Name: "get_time",
		Doc:  "Get the current system time, date and weekday.",
		Func: func(context.Context, tools.Args) (any, error) {
			now := c.now()
			return map[string]any{
				"local": now.Format(time.RFC3339),
				"utc":   now.UTC().Format(time.RFC3339),
				"date":  now.Format(time.DateOnly),
				"day":   now.Weekday().String(),
			}, nil
		},
	}}
}
