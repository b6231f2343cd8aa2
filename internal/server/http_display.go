package server

import "fmt"

// displayServerInfo prints the endpoint table and security settings.
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.out, "Available endpoints:")
	fmt.Fprintln(s.out, "  GET  /health            - Health check")
	fmt.Fprintln(s.out, "  GET  /stats             - Server statistics")
	fmt.Fprintln(s.out, "  POST /analyze           - Full resume analysis")
	fmt.Fprintln(s.out, "  POST /route             - Free-form instruction")
	fmt.Fprintln(s.out, "  POST /cover-letter      - Cover letter")
	fmt.Fprintln(s.out, "  POST /linkedin-summary  - LinkedIn summary")
	fmt.Fprintln(s.out, "  POST /evaluate-answer   - Interview answer feedback")
	if s.HistoryEnabled {
		fmt.Fprintln(s.out, "  GET  /history[/{id}]    - Saved analyses")
	}
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(s.out, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		return
	}
	fmt.Fprintln(s.out, "API authentication: DISABLED (no API keys configured)")
	fmt.Fprintln(s.out, "WARNING: API endpoints are publicly accessible!")
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
		return
	}
	fmt.Fprintln(s.out, "Request size limit: DISABLED")
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimiter == nil {
		fmt.Fprintln(s.out, "Rate limiting: DISABLED")
		return
	}
	fmt.Fprintf(s.out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Fprintln(s.out, "  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Fprintln(s.out, "  - Per IP address rate limiting enabled")
	}
}
