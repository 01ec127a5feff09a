package handlers

import (
	"bytes"
	"hash/crc32"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/guitar-store/internal/metrics"
)

// MaxAge is the freshness window sent with fingerprinted GET responses.
const MaxAge = 3600

// Fingerprint returns the lowercase hex CRC-32 (IEEE) of body.
func Fingerprint(body []byte) string {
	return strconv.FormatUint(uint64(crc32.ChecksumIEEE(body)), 16)
}

// bufferedWriter holds the response until the handler chain returns so the
// body can be fingerprinted and late headers can still be set.
type bufferedWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
	wrote  bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 && !w.wrote {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.wrote = true
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.wrote = true
	return w.buf.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *bufferedWriter) Size() int {
	if !w.wrote {
		return -1
	}
	return w.buf.Len()
}

func (w *bufferedWriter) Written() bool { return w.wrote }

// Flush is a no-op; the body goes out when the chain completes.
func (w *bufferedWriter) Flush() {}

// Conditional buffers every non-streaming response. Successful GET and HEAD
// responses get an ETag; a matching If-None-Match turns them into an empty
// 304. Other methods pass through unchanged. m may be nil.
func Conditional(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if streaming(c) {
			c.Next()
			return
		}

		out := c.Writer
		bw := &bufferedWriter{ResponseWriter: out}
		c.Writer = bw
		c.Next()
		c.Writer = out

		safe := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if safe && bw.Status() == http.StatusOK && bw.buf.Len() > 0 {
			tag := Fingerprint(bw.buf.Bytes())
			out.Header().Set("ETag", tag)
			if matches(c.GetHeader("If-None-Match"), tag) {
				if m != nil {
					m.NotModified.Inc()
				}
				h := out.Header()
				h.Del("Content-Type")
				h.Del("Content-Length")
				out.WriteHeader(http.StatusNotModified)
				out.WriteHeaderNow()
				return
			}
			if c.Request.Method == http.MethodGet {
				out.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(MaxAge))
			}
		}

		if bw.status != 0 {
			out.WriteHeader(bw.status)
		}
		if bw.buf.Len() > 0 {
			_, _ = out.Write(bw.buf.Bytes())
		} else if bw.wrote {
			out.WriteHeaderNow()
		}
	}
}

// matches compares an If-None-Match header with tag. Quoted, weak and
// comma-separated forms are accepted, as is "*".
func matches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimSpace(v)
		if v == "*" {
			return true
		}
		v = strings.TrimPrefix(v, "W/")
		if strings.Trim(v, `"`) == tag {
			return true
		}
	}
	return false
}
