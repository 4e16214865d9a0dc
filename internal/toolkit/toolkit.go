// Package toolkit holds the built-in tool providers offered to models.
package toolkit

import "github.com/chris/tablemate/internal/tools"

var (
	_ tools.Provider = Weather{}
	_ tools.Provider = (*Clock)(nil)
	_ tools.Provider = (*Notes)(nil)
	_ tools.Provider = (*Documents)(nil)
)
