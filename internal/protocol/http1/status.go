package http1

// Status lines emitted by the server. The full line form keeps response
// building a plain string concatenation.
const (
	StatusOK                  = "HTTP/1.1 200 OK"
	StatusBadRequest          = "HTTP/1.1 400 Bad Request"
	StatusNotFound            = "HTTP/1.1 404 Not Found"
	StatusInternalServerError = "HTTP/1.1 500 Internal Server Error"
	StatusNotImplemented      = "HTTP/1.1 501 Not Implemented"
	StatusServiceUnavailable  = "HTTP/1.1 503 Service Unavailable"
)

// StatusCode extracts the numeric code from a status line for logging
// and metrics. Unknown lines report 0.
func StatusCode(statusLine string) int {
	// "HTTP/1.1 " is 9 bytes; the code is the next 3.
	if len(statusLine) < 12 {
		return 0
	}
	code := 0
	for _, c := range statusLine[9:12] {
		if c < '0' || c > '9' {
			return 0
		}
		code = code*10 + int(c-'0')
	}
	return code
}
