package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const maxFormMemory = 1 << 20

// formFields flattens the submitted form into one value per name. Later
// values win, as with Object.fromEntries over FormData. Every named field is
// kept, empty or not, and nothing is added.
func formFields(c *gin.Context) (map[string]string, error) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, errors.Wrap(err, "parse form")
	}

	fields := make(map[string]string, len(c.Request.PostForm))
	for name, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[name] = values[len(values)-1]
		}
	}
	return fields, nil
}
