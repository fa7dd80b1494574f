package section

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// QueryValues returns the non-blank values of a repeated query parameter.
// An absent parameter yields nil, which callers read as "use the defaults";
// a parameter carrying only blank values yields an empty non-nil slice, an
// explicit empty selection.
func QueryValues(c echo.Context, name string) []string {
	raw, ok := c.QueryParams()[name]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
