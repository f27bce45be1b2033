package openapi

import (
	"strings"
	"testing"

	"github.com/unkn0wn-root/rdscript/internal/parser"
)

const petSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.2.0", "description": "A pet store.\nSecond line."},
  "servers": [{"url": "https://{env}.pets.example/v1", "variables": {"env": {"default": "api"}}}],
  "components": {
    "securitySchemes": {
      "token": {"type": "http", "scheme": "bearer"}
    }
  },
  "security": [{"token": []}],
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "summary": "List all pets",
        "parameters": [
          {"name": "limit", "in": "query", "required": true, "example": 10, "schema": {"type": "integer"}}
        ],
        "responses": {"200": {"description": "ok"}}
      },
      "post": {
        "operationId": "createPet",
        "requestBody": {
          "content": {
            "application/json": {
              "example": {"name": "rex", "tag": "dog"},
              "schema": {"type": "object"}
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    },
    "/pets/{petId}": {
      "delete": {
        "operationId": "deletePet",
        "deprecated": true,
        "responses": {"204": {"description": "gone"}}
      }
    }
  }
}`

func TestGenerateScript(t *testing.T) {
	script, err := Generate([]byte(petSpec), Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, want := range []string{
		"// Pets 1.2.0",
		"// A pet store.",
		`set BASE_URL "https://api.pets.example/v1"`,
		"// List all pets",
		`@name("listPets")`,
		"get /pets?limit=10",
		`@name("createPet")`,
		"post /pets {",
		`header "Authorization" ` + "`Bearer ${env(\"TOKEN\")}`",
		`header "Content-Type" "application/json"`,
		`body "{\"name\":\"rex\",\"tag\":\"dog\"}"`,
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("missing %q in:\n%s", want, script)
		}
	}

	if strings.Contains(script, "deletePet") {
		t.Fatal("deprecated operation included by default")
	}

	prog := parser.Parse(script)
	if errs := prog.Errors(); len(errs) != 0 {
		t.Fatalf("generated script has parse errors: %v", errs)
	}
}

func TestGenerateIncludesDeprecated(t *testing.T) {
	script, err := Generate([]byte(petSpec), Options{IncludeDeprecated: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(script, `@name("deletePet")`) {
		t.Fatalf("deprecated operation missing:\n%s", script)
	}
	if !strings.Contains(script, "delete /pets/{petId}") {
		t.Fatalf("path missing:\n%s", script)
	}
}

func TestGenerateRejectsGarbage(t *testing.T) {
	if _, err := Generate([]byte("not a spec"), Options{}); err == nil {
		t.Fatal("expected an error")
	}
}
