package domain

// LifestyleTag - один тег образа жизни и его подпись
type LifestyleTag struct {
	Key   string
	Label string
}

// TagVocabulary - закрытый словарь тегов, задается конфигурацией
type TagVocabulary struct {
	Tags []LifestyleTag
}

func (v TagVocabulary) Contains(key string) bool {
	for _, t := range v.Tags {
		if t.Key == key {
			return true
		}
	}
	return false
}

func (v TagVocabulary) Label(key string) string {
	for _, t := range v.Tags {
		if t.Key == key {
			return t.Label
		}
	}
	return key
}

// Keys возвращает ключи в порядке словаря
func (v TagVocabulary) Keys() []string {
	keys := make([]string, len(v.Tags))
	for i, t := range v.Tags {
		keys[i] = t.Key
	}
	return keys
}
