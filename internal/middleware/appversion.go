package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	appVersionHeader = "X-App-Version"
	appMajorKey      = "app_major_version"
)

// AppVersion extracts the client's major version from the X-App-Version
// header ("MAJOR.MINOR.PATCH"). A missing or unparseable header reads as
// major 0: clients predating version 2 never sent the header.
func AppVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(appMajorKey, parseMajor(c.GetHeader(appVersionHeader)))
		c.Next()
	}
}

// AppMajorVersion returns the major version stored by AppVersion.
func AppMajorVersion(c *gin.Context) int {
	if v, exists := c.Get(appMajorKey); exists {
		if major, ok := v.(int); ok {
			return major
		}
	}
	return 0
}

func parseMajor(version string) int {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
