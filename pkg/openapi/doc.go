// Package openapi embeds the OpenAPI 3 description of the registration
// endpoints and loads it through kin-openapi. The server validates the
// contract once at start-up and serves the resolved document as JSON.
package openapi
