// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var instance *I18n
var once sync.Once

// Initialize loads the embedded catalogs once. Later calls are no-ops.
func Initialize(defaultLang string) error {
	var err error
	once.Do(func() {
		if defaultLang == "" {
			defaultLang = "en"
		}
		instance = &I18n{
			translations: make(map[string]map[string]string),
			defaultLang:  defaultLang,
		}
		err = instance.LoadTranslations("locales")
	})
	return err
}

func (i *I18n) LoadTranslations(dir string) error {
	entries, err := localeFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list locales: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		filePath := path.Join(dir, entry.Name())

		data, err := localeFS.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", filePath, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", filePath, err)
		}

		i.mu.Lock()
		i.translations[lang] = translations
		i.mu.Unlock()
	}

	return nil
}

func (i *I18n) lookup(lang, key string) (string, bool) {
	if translations, exists := i.translations[lang]; exists {
		if text, exists := translations[key]; exists {
			return text, true
		}
	}
	return "", false
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	text, ok := i.lookup(lang, key)
	if !ok && lang != i.defaultLang {
		text, ok = i.lookup(i.defaultLang, key)
	}
	if !ok {
		// Return key if no translation found
		return key
	}

	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

func GetSupportedLanguages() []string {
	if instance == nil {
		return []string{"en"}
	}

	instance.mu.RLock()
	defer instance.mu.RUnlock()

	langs := make([]string, 0, len(instance.translations))
	for lang := range instance.translations {
		langs = append(langs, lang)
	}
	return langs
}
