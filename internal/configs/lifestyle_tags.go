package configs

import (
	_ "embed"
	"fmt"
	"os"

	"matjib-service/internal/core/domain"

	"gopkg.in/yaml.v3"
)

//go:embed lifestyle_tags.yaml
var defaultLifestyleTags []byte

type lifestyleTagsFile struct {
	Tags []struct {
		Key   string `yaml:"key"`
		Label string `yaml:"label"`
	} `yaml:"tags"`
}

// LoadTagVocabulary читает словарь из файла, а при пустом пути берет встроенный
func LoadTagVocabulary(path string) (domain.TagVocabulary, error) {
	data := defaultLifestyleTags
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return domain.TagVocabulary{}, fmt.Errorf("could not read lifestyle tags file %s: %w", path, err)
		}
	}
	return ParseTagVocabulary(data)
}

// ParseTagVocabulary разбирает YAML словаря. Ключи обязаны быть непустыми и уникальными.
func ParseTagVocabulary(data []byte) (domain.TagVocabulary, error) {
	var file lifestyleTagsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.TagVocabulary{}, fmt.Errorf("could not parse lifestyle tags: %w", err)
	}
	if len(file.Tags) == 0 {
		return domain.TagVocabulary{}, fmt.Errorf("lifestyle tags: vocabulary is empty")
	}

	vocab := domain.TagVocabulary{Tags: make([]domain.LifestyleTag, 0, len(file.Tags))}
	seen := make(map[string]struct{}, len(file.Tags))
	for i, t := range file.Tags {
		if t.Key == "" {
			return domain.TagVocabulary{}, fmt.Errorf("lifestyle tags: entry %d has empty key", i)
		}
		if _, dup := seen[t.Key]; dup {
			return domain.TagVocabulary{}, fmt.Errorf("lifestyle tags: duplicate key %q", t.Key)
		}
		seen[t.Key] = struct{}{}

		label := t.Label
		if label == "" {
			label = t.Key
		}
		vocab.Tags = append(vocab.Tags, domain.LifestyleTag{Key: t.Key, Label: label})
	}
	return vocab, nil
}
