package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routerAnnotation = regexp.MustCompile(`(?m)^// @Router\s+(\S+)\s+\[(\w+)\]`)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))
	assert.Equal(t, "Salon Management API", doc["info"].(map[string]any)["title"])
	assert.Equal(t, "/api/v1", doc["basePath"])
}

func TestSwaggerDocCoversEveryAnnotatedRoute(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	files, err := filepath.Glob(filepath.Join("..", "..", "internal", "handlers", "*.go"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	annotated := 0
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		src, err := os.ReadFile(f)
		require.NoError(t, err)
		for _, m := range routerAnnotation.FindAllStringSubmatch(string(src), -1) {
			annotated++
			route, method := m[1], m[2]
			ops, ok := doc.Paths[route]
			if assert.True(t, ok, "%s missing from the swagger doc (%s)", route, filepath.Base(f)) {
				assert.Contains(t, ops, method, "%s %s missing from the swagger doc", strings.ToUpper(method), route)
			}
		}
	}

	documented := 0
	for _, ops := range doc.Paths {
		documented += len(ops)
	}
	assert.Equal(t, annotated, documented)
}
