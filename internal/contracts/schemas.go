package contracts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ключи зарегистрированных схем
const (
	RecommendationsResponseV1      = "RecommendationsResponse/1.0.0"
	SearchCompletedEventV1         = "SearchCompletedEvent/1.0.0"
	RecommendationCompletedEventV1 = "RecommendationCompletedEvent/1.0.0"
	DatasetUpdatedEventV1          = "DatasetUpdatedEvent/1.0.0"
)

//go:embed schemas
var schemasFS embed.FS

// суффикс имени по каталогу верхнего уровня
var kindSuffix = map[string]string{
	"events": "Event",
	"relay":  "Response",
}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	paths, err := schemaPaths()
	if err != nil {
		log.Fatalf("error walking schema resources: %v", err)
	}

	// Сначала добавляем все схемы как ресурсы, чтобы работали $ref между ними
	for _, path := range paths {
		file, err := schemasFS.Open(path)
		if err != nil {
			log.Fatalf("failed to open schema resource %s: %v", path, err)
		}
		err = compiler.AddResource(path, file)
		file.Close()
		if err != nil {
			log.Fatalf("failed to add schema resource %s: %v", path, err)
		}
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			log.Fatalf("could not compile schema %s: %v", path, err)
		}
		key := generateKeyFromPath(path)
		if key == "" {
			log.Printf("WARNING: schema %s does not follow <kind>/<name>/v<N>.json layout. Skipping.", path)
			continue
		}
		compiledSchemas[key] = schema
	}
}

func schemaPaths() ([]string, error) {
	var paths []string
	err := fs.WalkDir(schemasFS, "schemas", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// generateKeyFromPath преобразует "schemas/events/search-completed/v1.json"
// в "SearchCompletedEvent/1.0.0"
func generateKeyFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "schemas/")
	trimmed = strings.TrimSuffix(trimmed, ".json")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return ""
	}
	suffix, ok := kindSuffix[parts[0]]
	if !ok {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	version := strings.Replace(parts[2], "v", "", 1) + ".0.0"
	return fmt.Sprintf("%s/%s", name.String(), version)
}

// Validate проверяет JSON-документ по зарегистрированной схеме
func Validate(key string, body []byte) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' not found", key)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("document is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
