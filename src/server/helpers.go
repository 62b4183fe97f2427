package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

func filterValues(values map[string]any, keys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(keys))
	for k, v := range values {
		if _, ok := keys[k]; ok {
			out[k] = v
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// -----------------------------------------------------------------------------

func queryBool(c *gin.Context, key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
