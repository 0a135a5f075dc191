package handler

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

// openAPIDoc hands the embedded openapi.yaml to swag as JSON, which is
// what the Swagger UI behind /swagger/* fetches as doc.json.
type openAPIDoc struct{}

var openAPIJSON = sync.OnceValue(func() string {
	var doc any
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return string(openAPISpec)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return string(openAPISpec)
	}
	return string(b)
})

func (openAPIDoc) ReadDoc() string { return openAPIJSON() }

func init() {
	swag.Register(swag.Name, openAPIDoc{})
}

// APIDocs serves Swagger UI and its doc.json under a /swagger/* route.
func APIDocs() fiber.Handler {
	return swagger.HandlerDefault
}
