package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response. fields is nil unless the request failed
// validation.
func Error(c *gin.Context, code int, message string, fields map[string][]string) {
	c.JSON(code, Response{
		Status:  false,
		Message: message,
		Errors:  fields,
	})
}

// Paged wraps a list with its pagination block.
type Paged struct {
	Items      interface{} `json:"items"`
	Pagination interface{} `json:"pagination"`
}
