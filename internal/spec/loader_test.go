package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const petstoreJSON = `{
  "swagger": "2.0",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "basePath": "/v2",
  "paths": {
    "/pet/{petId}": {
      "get": {
        "summary": "find pet",
        "parameters": [{"name": "petId", "in": "path", "type": "string", "required": true}]
      },
      "delete": {
        "parameters": [{"name": "petId", "in": "path", "type": "string", "required": true}]
      }
    },
    "/pet": {
      "post": {
        "parameters": [{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/Pet"}}]
      }
    }
  },
  "definitions": {
    "Pet": {
      "properties": {
        "name": {"type": "string", "description": "pet name"},
        "category": {"$ref": "#/definitions/Category", "description": "pet category"}
      }
    },
    "Category": {"properties": {"id": {"type": "integer"}}}
  }
}`

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, err := Load(ctx, "ftp://example.com/spec.yaml")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "  ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/spec.json"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_HTTP_RetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(petstoreJSON))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/v2/api-docs", WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if doc.BasePath != "/v2" {
		t.Fatalf("basePath mismatch: %q", doc.BasePath)
	}
}

func TestLoad_HTTP_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single request, got %d", got)
	}
}

func TestLoad_MalformedDocument(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"swagger": "2.0", "paths": [`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "nover.yaml")
	if err := os.WriteFile(path, []byte("paths: {}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestLoad_V2_YAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "swagger.yaml")
	content := strings.TrimSpace(`swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
basePath: /
paths:
  /user/login:
    get:
      summary: Logs user into the system
      parameters:
      - name: username
        in: query
        type: string
  /user:
    post:
      parameters:
      - name: body
        in: body
        schema:
          $ref: '#/definitions/User'
definitions:
  User:
    properties:
      id:
        type: integer
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := doc.Templates(); len(got) != 2 || got[0] != "/user/login" || got[1] != "/user" {
		t.Fatalf("unexpected path order: %v", got)
	}
	body := doc.Path("/user").Operations[0].Parameters[0]
	if body.In != "body" || body.Type != "User" {
		t.Fatalf("unexpected body parameter: %+v", body)
	}
	if len(doc.Definitions) != 1 || doc.Definitions[0].Name != "User" {
		t.Fatalf("unexpected definitions: %+v", doc.Definitions)
	}
}

func TestLoad_V3_ConvertedToV2Model(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.yaml")
	content := strings.TrimSpace(`openapi: 3.0.0
info:
  title: Sample
  version: "1.0.0"
paths:
  /pets/{id}:
    get:
      summary: Get pet
      parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
      responses:
        "200":
          description: ok
components:
  schemas:
    Pet:
      properties:
        name:
          type: string
          description: the name
`) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	op := doc.Path("/pets/{id}").Operations[0]
	if op.Method != GET || op.Summary != "Get pet" {
		t.Fatalf("unexpected operation: %+v", op)
	}
	if len(op.Parameters) != 1 || !op.Parameters[0].IsPath() || op.Parameters[0].Name != "id" {
		t.Fatalf("unexpected parameters: %+v", op.Parameters)
	}
	if len(doc.Definitions) != 1 || doc.Definitions[0].Properties[0].Description != "the name" {
		t.Fatalf("unexpected definitions: %+v", doc.Definitions)
	}
}
