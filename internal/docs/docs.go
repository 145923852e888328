// Package docs embeds the OpenAPI description of the API and serves it as
// JSON together with a Swagger UI page.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// JSON converts the embedded YAML document to JSON.
func JSON() ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(openapiYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	return json.Marshal(stringKeys(doc))
}

// stringKeys rewrites YAML mappings with non-string keys so that
// encoding/json accepts them.
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, vv := range t {
			t[k] = stringKeys(vv)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = stringKeys(vv)
		}
		return out
	case []interface{}:
		for i := range t {
			t[i] = stringKeys(t[i])
		}
		return t
	}
	return v
}

const uiPage = `<!DOCTYPE html>
<html>
<head>
  <title>Garage Management API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>window.ui = SwaggerUIBundle({url: "/swagger.json", dom_id: "#swagger-ui"});</script>
</body>
</html>`

// Register mounts /swagger.json and /api-docs.  The document is converted
// once here so a broken file fails at startup.
func Register(e *echo.Echo) error {
	spec, err := JSON()
	if err != nil {
		return err
	}
	e.GET("/swagger.json", func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, spec)
	})
	e.GET("/api-docs", func(c echo.Context) error {
		return c.HTML(http.StatusOK, uiPage)
	})
	return nil
}
