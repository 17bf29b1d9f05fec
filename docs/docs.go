// Package docs registers the API document with swag so echo-swagger can serve it.
package docs

import (
	"fmt"
	"sync"

	"marketplace/internal/generated/servers"

	"github.com/swaggo/swag"
)

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Marketplace Delivery API",
	Description:      "Postings, deliveries and the delivery lifecycle.",
	InfoInstanceName: "swagger",
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var (
	registerOnce sync.Once
	registerErr  error
)

// Register fills SwaggerInfo from the embedded OpenAPI document and adds it
// to the swag registry. Calling it again is a no-op.
func Register() error {
	registerOnce.Do(func() {
		doc, err := servers.GetSwagger()
		if err != nil {
			registerErr = err
			return
		}
		raw, err := doc.MarshalJSON()
		if err != nil {
			registerErr = fmt.Errorf("marshal openapi document: %w", err)
			return
		}
		SwaggerInfo.SwaggerTemplate = string(raw)
		swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
	})
	return registerErr
}
