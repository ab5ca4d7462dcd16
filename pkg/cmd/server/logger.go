package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"
)

// Logger returns a middleware that logs HTTP requests.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			var err error
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			reqSize, convErr := strconv.ParseInt(req.Header.Get(echo.HeaderContentLength), 10, 0)
			if convErr != nil {
				reqSize = 0
			}
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}

			entry := log.WithFields(log.Fields{
				"id":         id,
				"remote_ip":  c.RealIP(),
				"method":     req.Method,
				"uri":        req.RequestURI,
				"status":     res.Status,
				"error":      errMsg,
				"bytes_in":   reqSize,
				"bytes_out":  res.Size,
				"latency":    stop.Sub(start).String(),
				"user_agent": req.UserAgent(),
			})

			msg := req.Method + " " + req.RequestURI + " " + strconv.Itoa(res.Status) + " " + http.StatusText(res.Status)
			if res.Status >= http.StatusInternalServerError {
				entry.Error(msg)
			} else {
				entry.Info(msg)
			}

			return err
		}
	}
}
