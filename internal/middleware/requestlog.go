package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

const headerRequestID = "X-Request-ID"

// RequestLogger tags every request with an id (reusing an incoming
// X-Request-ID) and writes one structured line when it completes.  5xx
// responses log at error level, 4xx at warn.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    if log == nil {
        log = zap.NewNop()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            rid := c.Request().Header.Get(headerRequestID)
            if rid == "" {
                rid = uuid.New().String()
            }
            c.Set(ctxRequestID, rid)
            c.Response().Header().Set(headerRequestID, rid)

            err := next(c)
            if err != nil {
                // let echo's error handler write the response so the status is final
                c.Error(err)
            }

            status := c.Response().Status
            fields := []zap.Field{
                zap.String("request_id", rid),
                zap.String("method", c.Request().Method),
                zap.String("route", c.Path()),
                zap.String("uri", c.Request().RequestURI),
                zap.Int("status", status),
                zap.Duration("latency", time.Since(start)),
                zap.String("ip", c.RealIP()),
            }
            if id, ok := UserID(c); ok {
                fields = append(fields, zap.Uint64("user_id", id))
            }
            if err != nil {
                fields = append(fields, zap.Error(err))
            }
            log.Check(levelFor(status), "request").Write(fields...)
            return nil
        }
    }
}

func levelFor(status int) zapcore.Level {
    switch {
    case status >= 500:
        return zapcore.ErrorLevel
    case status >= 400:
        return zapcore.WarnLevel
    default:
        return zapcore.InfoLevel
    }
}
