package ssl

import (
	"strconv"

	"GrainHero/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler redirects plain HTTP requests to the TLS listener on host:port.
func TlsHandler(host string, port int) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:          true,
		SSLHost:              host + ":" + strconv.Itoa(port),
		STSSeconds:           31536000,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:        false,
		STSIncludeSubdomains: true,
	})
	return func(c *gin.Context) {
		// Process has already written the redirect when it fails.
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zlog.Debug("tls redirect", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
