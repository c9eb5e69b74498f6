package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// DeviceHeader names the client installation. Each device owns its own
// local session record.
const DeviceHeader = "X-Device-ID"

// DeviceKey is the context key holding the validated device id.
const DeviceKey = "device"

var deviceID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// DeviceMiddleware requires a well-formed X-Device-ID header.
func DeviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(DeviceHeader)
		if !deviceID.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid " + DeviceHeader + " header"})
			return
		}
		c.Set(DeviceKey, id)
		c.Next()
	}
}

// Device returns the id stored by DeviceMiddleware.
func Device(c *gin.Context) string {
	return c.GetString(DeviceKey)
}

// limiterKey picks the rate limit bucket: verified subject, then device, then client IP.
func limiterKey(c *gin.Context) string {
	if sub := Subject(c); sub != "" {
		return "sub:" + sub
	}
	if dev := c.GetHeader(DeviceHeader); dev != "" && deviceID.MatchString(dev) {
		return "dev:" + dev
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
