// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"
)

// # Security Headers

// SecureHeaders sets conservative browser security headers on every response.
//
// HSTS is only sent when hsts is true (production behind TLS).
func SecureHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := writer.Header()
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "SAMEORIGIN")
			header.Set("X-DNS-Prefetch-Control", "off")
			header.Set("X-Download-Options", "noopen")
			header.Set("X-XSS-Protection", "0")
			header.Set("Referrer-Policy", "no-referrer")
			header.Set("Cross-Origin-Resource-Policy", "same-origin")

			if hsts {
				header.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # WebSocket Awareness

// IsWebSocketUpgrade reports whether the request asks for a protocol upgrade
// to WebSocket.
func IsWebSocketUpgrade(request *http.Request) bool {
	return strings.EqualFold(request.Header.Get("Upgrade"), "websocket") &&
		headerContainsToken(request.Header.Get("Connection"), "upgrade")
}

// SkipWebSocket applies wrap to plain HTTP requests only.
//
// Compression and request timeouts break long-lived upgraded connections.
func SkipWebSocket(wrap func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := wrap(next)
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if IsWebSocketUpgrade(request) {
				next.ServeHTTP(writer, request)
				return
			}
			wrapped.ServeHTTP(writer, request)
		})
	}
}

func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
