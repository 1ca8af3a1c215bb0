// Package stream writes real-time snapshot channels out as Server-Sent
// Events. Each event carries a whole snapshot, not a diff: consumers must
// replace their local state with every payload.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ServeSSE drains ch onto the response as SSE data events until the client
// disconnects or the channel closes. cancel tears down the upstream
// subscription.
func ServeSSE[T any](c echo.Context, ch <-chan T, cancel func()) error {
	defer cancel()

	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(snap)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}
