// Package i18n, bildirim email'leri için çoklu dil desteği sağlar.
//
// Kullanıcının DB'deki language tercihi ("en" veya "tr") ile Localizer
// oluşturulur; email subject/body metinleri locale JSON dosyalarından okunur.
//
// Kullanım:
//
//	localizer := i18n.NewLocalizer("tr")
//	subject := localizer.T("email.newMessage.subject")
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"sync"
)

// SupportedLanguages — desteklenen dil kodları.
var SupportedLanguages = []string{"en", "tr"}

// DefaultLanguage — varsayılan dil.
const DefaultLanguage = "en"

// translations, tüm dil çevirilerini bellekte tutan harita.
// map[lang]map[key]value formatında.
// Uygulama başlangıcında yüklenir, sonra sadece okunur — thread-safe.
var (
	translations map[string]map[string]string
	loadOnce     sync.Once
)

// Load, çeviri dosyalarını fs.FS'ten yükler.
// Her dil için bir JSON dosyası beklenir: en.json, tr.json.
// sync.Once ile korunur — birden fazla çağrı tek yükleme yapar.
func Load(localesFS fs.FS) error {
	var loadErr error

	loadOnce.Do(func() {
		translations = make(map[string]map[string]string)

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				return
			}

			// Nested JSON'u flat key'lere dönüştür: {"email": {"x": "..."}} → "email.x"
			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			translations[lang] = flat

			log.Printf("[i18n] loaded %d keys for language: %s", len(flat), lang)
		}
	})

	return loadErr
}

// Localizer, belirli bir dil için çeviri yapan struct.
type Localizer struct {
	lang string
}

// NewLocalizer, belirli bir dil için Localizer oluşturur.
// Desteklenmeyen dil verilirse varsayılana düşer.
func NewLocalizer(lang string) *Localizer {
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// T, verilen key'in çevirisini döner.
// Key bulunamazsa önce varsayılan dilde aranır, o da yoksa key'in
// kendisi döner — eksik çeviri email gönderimini kırmamalı.
func (l *Localizer) T(key string) string {
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// isSupported, dil kodunun desteklenip desteklenmediğini kontrol eder.
func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// flattenMap, nested map'i "a.b.c" formatında flat key'lere dönüştürür.
func flattenMap(prefix string, nested map[string]any, flat map[string]string) {
	for key, value := range nested {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			flat[fullKey] = v
		case map[string]any:
			flattenMap(fullKey, v, flat)
		default:
			// Sayı/bool çeviri dosyasında beklenmez — string'e çevirip sakla
			flat[fullKey] = strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
}
