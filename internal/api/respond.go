package api

import (
	"bytes"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is served to clients that ask for it in Accept.
const MIMEApplicationMsgpack = "application/msgpack"

// respond writes v as JSON, or as MessagePack with the same field names when
// the client accepts it.
func respond(c echo.Context, status int, v any) error {
	if !wantsMsgpack(c.Request().Header.Get(echo.HeaderAccept)) {
		return c.JSON(status, v)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(status, MIMEApplicationMsgpack, buf.Bytes())
}

func wantsMsgpack(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		if mt == MIMEApplicationMsgpack || mt == "application/x-msgpack" {
			return true
		}
	}
	return false
}
