// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// I18nMiddleware picks the response language from Accept-Language.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "en"
	}

	return func(c *gin.Context) {
		c.Set("lang", resolveLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8". Only the first preference is honored.
func resolveLanguage(header, defaultLang string) string {
	if header == "" {
		return defaultLang
	}

	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch first {
	case "zh-TW", "zh-Hant", "zh_TW", "zh-HK", "zh":
		return "zh_TW"
	case "en", "en-US", "en-GB":
		return "en"
	default:
		return defaultLang
	}
}
