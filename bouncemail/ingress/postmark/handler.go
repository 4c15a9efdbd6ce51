package postmark

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Pandentia/bouncemail/bouncemail"
)

// Provider field names.
const (
	typeField  = "Type"
	emailField = "Email"
)

const maxMemory = 8 << 20

func (api *API) bounceHandler(c *gin.Context) {
	logger := api.Logger.With().Str("module", "handler").Logger()
	logger.Debug().Msg("Request received")

	fields, err := requestFields(c)
	if err != nil {
		logger.Err(err).Msg("Error parsing request body")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	event := bouncemail.InboundEvent{
		Type:  fields[typeField],
		Email: fields[emailField],
	}
	delete(fields, typeField)
	delete(fields, emailField)
	if len(fields) > 0 {
		event.Fields = fields
	}

	resp := api.Dispatcher.Dispatch(event)
	c.JSON(resp.StatusCode, resp)
	logger.Debug().Int("status", resp.StatusCode).Msg("Request handled")
}

func (api *API) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestFields merges query parameters with the body fields, the body winning.
func requestFields(c *gin.Context) (map[string]string, error) {
	fields := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	switch c.ContentType() {
	case binding.MIMEJSON:
		body, err := c.GetRawData()
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			return fields, nil
		}
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		for key, value := range raw {
			fields[key] = jsonString(value)
		}
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
			return nil, err
		}
		mergeForm(fields, c)
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		mergeForm(fields, c)
	}

	return fields, nil
}

func mergeForm(fields map[string]string, c *gin.Context) {
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
}

// jsonString returns strings unquoted, null as empty, and anything else as raw JSON.
func jsonString(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}
