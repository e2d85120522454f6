// Package response shapes everything the read API sends back. Success and
// failure both travel as a {code, msg, data} envelope at HTTP 200, so
// ingestion clients switch on the envelope code and a failed parse can never
// be mistaken for an empty document.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// codeErr satisfies the webapi error contract: Code() lands in the envelope's
// code field, Error() in msg.
type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

// Success sends data in the envelope; for read operations data is the chunk
// list.
func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// Error sends a non-zero envelope code with the failure cause as msg.
func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}
