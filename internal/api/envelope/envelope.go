// Package envelope renders every API response in one shape:
//
//	{"success": true,  "data": ..., "count": n}
//	{"success": true,  "message": "..."}
//	{"success": false, "error": "...", "fields": {...}}
package envelope

import (
	"reflect"

	"github.com/labstack/echo/v4"
)

// Response is the wire envelope. Only one of Data, Message or Error is set.
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// OK renders data with status code. Slices also carry their length in count,
// and a nil slice renders as [].
func OK(c echo.Context, code int, data any) error {
	resp := Response{Success: true, Data: data}
	if n, ok := sliceLen(data); ok {
		resp.Count = &n
		if n == 0 {
			resp.Data = reflect.MakeSlice(reflect.TypeOf(data), 0, 0).Interface()
		}
	}
	return c.JSON(code, resp)
}

// Message renders a success without payload.
func Message(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{Success: true, Message: msg})
}

// Fail renders an error envelope. fields may be nil.
func Fail(c echo.Context, code int, msg string, fields map[string]string) error {
	return c.JSON(code, Response{Success: false, Error: msg, Fields: fields})
}

func sliceLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return 0, false
	}
	return rv.Len(), true
}
