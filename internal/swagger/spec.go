package swagger

// Spec is the gateway's embedded OpenAPI document, describing the tag and
// HMI endpoints served under /api/v1.
var Spec = []byte(`{
  "openapi": "3.0.3",
  "info": {
    "title": "PLC Gateway API",
    "description": "REST surface for tag management and HMI integration against CompactLogix/SLC 5/05 controllers bridged to OPC UA.",
    "version": "1.0.0"
  },
  "paths": {
    "/api/v1/tags": {
      "get": { "summary": "List all tags", "responses": { "200": { "description": "Array of tag objects" } } },
      "post": { "summary": "Create one or more tags", "responses": { "201": { "description": "Created tag(s)" }, "400": { "description": "Invalid payload" } } }
    },
    "/api/v1/tags/{tag_id}": {
      "get": { "summary": "Fetch a single tag", "responses": { "200": { "description": "Tag object" }, "404": { "description": "Unknown tag_id" } } },
      "patch": { "summary": "Update whitelisted tag fields", "responses": { "200": { "description": "Updated tag" }, "404": { "description": "Unknown tag_id" } } },
      "delete": { "summary": "Remove a tag", "responses": { "200": { "description": "Deleted tag id" }, "404": { "description": "Unknown tag_id" } } }
    },
    "/api/v1/tags/import": {
      "put": { "summary": "Import tags from a JSON document; replace_all=true clears existing tags first", "responses": { "200": { "description": "Imported tag ids" } } }
    },
    "/api/v1/tags/export": {
      "get": { "summary": "Export the tag configuration as XLSX or PDF", "parameters": [ { "name": "format", "in": "query", "schema": { "type": "string", "enum": ["xlsx", "pdf"] } } ], "responses": { "200": { "description": "Document stream" } } }
    },
    "/api/v1/hmi/data": {
      "get": { "summary": "Snapshot of every tag's current stored (unscaled) value", "responses": { "200": { "description": "timestamp plus tags: tag_id -> value map" } } }
    },
    "/api/v1/hmi/config": {
      "get": { "summary": "Tag metadata visible to HMI clients", "responses": { "200": { "description": "Array of client-visible tag fields" } } }
    },
    "/api/v1/hmi/health": {
      "get": { "summary": "Per-controller reconnect health", "responses": { "200": { "description": "plc_id -> health map" } } }
    },
    "/api/v1/hmi/ready": {
      "get": { "summary": "Readiness probe", "responses": { "200": { "description": "Ready" }, "503": { "description": "Not ready" } } }
    },
    "/api/v1/hmi/stop": {
      "post": { "summary": "Request cooperative gateway shutdown", "responses": { "200": { "description": "Shutdown acknowledged" } } }
    }
  }
}`)
