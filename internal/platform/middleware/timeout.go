package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/safetynet/internal/platform/apierror"
)

// RequestTimeout sets a deadline on each request context. When the handler
// has not responded by then the request is answered with 504 and whatever
// the handler writes afterwards is dropped. The middleware still waits for
// the handler to return before handing the context back.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			res := c.Response()
			tw := newTimeoutWriter(res.Writer)
			res.Writer = tw

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				tw.release(res)
				return err
			case <-ctx.Done():
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					// client went away
					err := <-done
					tw.release(res)
					return err
				}
				answered := tw.expire()
				err := <-done
				tw.release(res)
				if !answered {
					return err
				}
				res.Status = http.StatusGatewayTimeout
				res.Committed = true
				res.Size = tw.size
				return nil
			}
		}
	}
}

// timeoutWriter sits between the handler and the real writer. The handler
// gets its own header map so the 504 can be written without touching state
// the handler goroutine still uses.
type timeoutWriter struct {
	w      http.ResponseWriter
	header http.Header

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
	size        int64
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, header: w.Header().Clone()}
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.wroteHeader = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.writeHeaderLocked(http.StatusOK)
	}
	return tw.w.Write(b)
}

func (tw *timeoutWriter) Flush() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if f, ok := tw.w.(http.Flusher); ok && !tw.timedOut {
		f.Flush()
	}
}

// expire stops passing writes through and, when the handler has not
// started its response, writes the 504. It reports whether it did.
func (tw *timeoutWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	if tw.wroteHeader {
		return false
	}

	body, _ := json.Marshal(apierror.Body{Message: "request exceeded the allowed time"})
	h := tw.w.Header()
	h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	tw.wroteHeader = true
	tw.w.WriteHeader(http.StatusGatewayTimeout)
	n, _ := tw.w.Write(append(body, '\n'))
	tw.size = int64(n)
	if f, ok := tw.w.(http.Flusher); ok {
		f.Flush()
	}
	return true
}

// release hands the real writer back to the response. Headers the handler
// set without writing a response are kept for the error handler.
func (tw *timeoutWriter) release(res *echo.Response) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.wroteHeader {
		dst := tw.w.Header()
		for k, v := range tw.header {
			dst[k] = v
		}
	}
	res.Writer = tw.w
}
