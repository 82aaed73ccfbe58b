package oauth

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema validates the decoded content of one side's partition.
type Schema struct {
	id   string
	root *openapi3.Schema
}

func newSchema(id string, properties map[string]*openapi3.Schema, required ...string) *Schema {
	root := openapi3.NewObjectSchema()
	for name, property := range properties {
		root.WithProperty(name, property)
	}
	root.Required = required
	return &Schema{id: id, root: root}
}

func (s *Schema) ID() string { return s.id }

// Validate checks data against the schema. data must consist of JSON values
// (string, float64, bool, nil, []any, map[string]any).
func (s *Schema) Validate(data map[string]any) error {
	if err := s.root.VisitJSON(data); err != nil {
		return &DataValidationError{Schema: s.id, Data: data, Err: err}
	}
	return nil
}

// Default returns the documented default of a property.
func (s *Schema) Default(property string) (any, bool) {
	ref, ok := s.root.Properties[property]
	if !ok || ref.Value == nil || ref.Value.Default == nil {
		return nil, false
	}
	return ref.Value.Default, true
}

// stringProperty reports whether property is declared as a plain string.
func (s *Schema) stringProperty(property string) bool {
	if s == nil {
		return false
	}
	ref, ok := s.root.Properties[property]
	return ok && ref.Value != nil && ref.Value.Type == openapi3.TypeString
}

func (s *Schema) String() string { return fmt.Sprintf("schema(%s)", s.id) }

func stringArray() *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
}

func enumOf(values []string) *openapi3.Schema {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, v)
	}
	return openapi3.NewStringSchema().WithEnum(enum...)
}

// ProviderSchema describes a Provider partition.
var ProviderSchema = newSchema("oauth/provider", map[string]*openapi3.Schema{
	KeyIssuerURL:             openapi3.NewStringSchema(),
	KeyAuthorizationEndpoint: openapi3.NewStringSchema(),
	KeyTokenEndpoint:         openapi3.NewStringSchema(),
	KeyIntrospectionEndpoint: openapi3.NewStringSchema(),
	KeyUserinfoEndpoint:      openapi3.NewStringSchema(),
	KeyJWKSEndpoint:          openapi3.NewStringSchema(),
	KeyScope:                 openapi3.NewStringSchema(),
	KeyClientID:              openapi3.NewStringSchema(),
	KeyClientSecretID:        openapi3.NewStringSchema(),
	KeyGroups:                openapi3.NewStringSchema().WithNullable(),
	KeyCAChain:               stringArray().WithDefault([]any{}),
},
	KeyIssuerURL,
	KeyAuthorizationEndpoint,
	KeyTokenEndpoint,
	KeyIntrospectionEndpoint,
	KeyUserinfoEndpoint,
	KeyJWKSEndpoint,
	KeyScope,
)

// RequirerSchema describes a Requirer partition.
var RequirerSchema = newSchema("oauth/requirer", map[string]*openapi3.Schema{
	KeyRedirectURI:             openapi3.NewStringSchema(),
	KeyAudience:                stringArray().WithDefault([]any{}),
	KeyScope:                   openapi3.NewStringSchema(),
	KeyGrantTypes:              openapi3.NewArraySchema().WithItems(enumOf(AllowedGrantTypes)),
	KeyTokenEndpointAuthMethod: enumOf(AllowedTokenEndpointAuthMethods).WithDefault(TokenEndpointAuthMethodClientSecretBasic),
},
	KeyRedirectURI,
	KeyAudience,
	KeyScope,
	KeyGrantTypes,
	KeyTokenEndpointAuthMethod,
)
