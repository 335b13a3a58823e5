package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/pkg/redis"
	"github.com/STAYCALM1234/mabest-alum/pkg/response"
)

// CtxCredential hashed email an auth request was made for
const CtxCredential = "credential"

// credentialPeekBytes how much of an auth body is read to find the email
const credentialPeekBytes = 4 << 10

// RateLimit Redis sliding window guarding the credential routes.
// Each request counts against its client IP and, when the JSON body names
// an email, against that account too, so one address cannot be brute
// forced from many IPs. A nil rdb or a Redis failure lets the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		keys := []string{"rate_limit:auth:" + route + ":ip:" + c.ClientIP()}
		if subject := credentialSubject(c); subject != "" {
			c.Set(CtxCredential, subject)
			keys = append(keys, "rate_limit:auth:"+route+":account:"+subject)
		}

		for _, key := range keys {
			allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
				continue
			}
			if !allowed {
				logger.Warn("auth attempts throttled",
					zap.String("route", route),
					zap.String("ip", c.ClientIP()),
					zap.String("credential", c.GetString(CtxCredential)),
				)
				response.Error(c, http.StatusTooManyRequests, 10004, "too many requests, please try again later")
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// credentialSubject hashes the normalized email of a JSON auth body.
// The body is restored so the handler can bind it again.
func credentialSubject(c *gin.Context) string {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}

	head, err := io.ReadAll(io.LimitReader(c.Request.Body, credentialPeekBytes))
	c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(head), c.Request.Body), c.Request.Body}
	if err != nil {
		return ""
	}

	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(head, &body) != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}

type readCloser struct {
	io.Reader
	io.Closer
}
