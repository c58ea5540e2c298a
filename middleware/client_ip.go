package middleware

import (
	"github.com/gin-gonic/gin"
)

// TrustProxies makes c.ClientIP read X-Forwarded-For, then X-Real-IP, only
// when the direct peer falls inside one of proxies (IPs or CIDRs). Hops are
// walked from the right and the first untrusted address wins. With no
// proxies the peer address is used and forwarding headers are ignored.
func TrustProxies(engine *gin.Engine, proxies []string) error {
	engine.ForwardedByClientIP = true
	engine.RemoteIPHeaders = []string{"X-Forwarded-For", "X-Real-IP"}
	return engine.SetTrustedProxies(proxies)
}
