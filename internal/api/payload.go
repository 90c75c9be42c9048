package api

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// readJSONPayload decodes the body as a JSON object whatever the content
// type. Empty, malformed or non-object bodies yield an empty payload so
// validation reports the first missing field.
func readJSONPayload(c *gin.Context) map[string]interface{} {
	payload := map[string]interface{}{}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return payload
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil || decoded == nil {
		return payload
	}
	return decoded
}

// queryPayload takes the first value of each query parameter
func queryPayload(c *gin.Context) map[string]interface{} {
	payload := map[string]interface{}{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload
}
