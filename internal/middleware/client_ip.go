package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP devolve o IP do cliente. Com trustProxy, usa o primeiro endereço de
// X-Forwarded-For e depois X-Real-IP; sem ele, só o RemoteAddr da conexão,
// já que esses cabeçalhos são livres para quem chama a API diretamente.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
