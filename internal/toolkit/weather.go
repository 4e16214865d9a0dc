package toolkit

import (
	"context"

	"github.com/chris/tablemate/internal/tools"
)

// Weather is a demonstration provider that always reports the same reading.
type Weather struct{}

func (Weather) Operations() []tools.Operation {
	return []tools.Operation{{
		Name: "get_weather",
		Doc: `Get weather of a location, the user should supply a location first.

Args:
    location: The city and state, e.g. San Francisco, CA`,
		Params: []tools.Param{tools.Arg("location", tools.String)},
		Func: func(context.Context, tools.Args) (any, error) {
			return "24℃", nil
		},
	}}
}
