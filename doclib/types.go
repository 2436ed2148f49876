package doclib

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Contact struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Email string `json:"email"`
}

type License struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Info struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	TermsOfService string  `json:"termsOfService,omitempty"`
	Version        string  `json:"version"`
	Contact        Contact `json:"contact"`
	License        License `json:"license"`
}

type Server struct {
	URL         string         `json:"url"`
	Description string         `json:"description"`
	Variables   map[string]any `json:"variables"`
}

type Security struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description"`
}

type Content struct {
	Schema any `json:"schema"`
}

type ReqBody struct {
	Required bool               `json:"required"`
	Content  map[string]Content `json:"content"`
}

type Component struct {
	Schemas       map[string]any      `json:"schemas"`
	Security      map[string]Security `json:"securitySchemes"`
	RequestBodies map[string]ReqBody  `json:"requestBodies"`
}

type Schema struct {
	Ref string `json:"$ref"`
}

type SchemaResp struct {
	Schema Schema `json:"schema"`
}

type Response struct {
	Description string                `json:"description"`
	Content     map[string]SchemaResp `json:"content"`
}

type Parameter struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Schema      any    `json:"schema"`
}

type Operation struct {
	Tags        []string              `json:"tags"`
	Summary     string                `json:"summary"`
	Description string                `json:"description"`
	ID          string                `json:"operationId"`
	Parameters  []Parameter           `json:"parameters"`
	RequestBody *Schema               `json:"requestBody,omitempty"`
	Responses   map[string]Response   `json:"responses"`
	Security    []map[string][]string `json:"security"`
}

type Path struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Patch  *Operation `json:"patch,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
	Head   *Operation `json:"head,omitempty"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Openapi struct {
	OpenAPI    string                               `json:"openapi"`
	Info       Info                                 `json:"info"`
	Servers    []Server                             `json:"servers"`
	Tags       []Tag                                `json:"tags,omitempty"`
	Paths      *orderedmap.OrderedMap[string, Path] `json:"paths"`
	Components Component                            `json:"components"`
}

// Doc is the per-route documentation a route handler supplies; uapi fills in
// the routing fields (Pattern, OpId, Method, Tags, AuthType) at registration.
type Doc struct {
	Summary     string
	Description string
	Params      []Parameter
	Req         any
	Resp        any
	RespName    string

	Pattern  string
	OpId     string
	Method   string
	Tags     []string
	AuthType []string
}
