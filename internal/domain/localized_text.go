package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/listing-microservice/internal/pkg/i18n"
)

// LocalizedText - перевод поля по коду языка
type LocalizedText map[string]string

// Resolve never fails: exact code, base code, default language, first
// non-empty value by key order, then "".
func (t LocalizedText) Resolve(lang string) string {
	if len(t) == 0 {
		return ""
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	if v, ok := t.lookup(lang); ok {
		return v
	}
	if base := i18n.BaseCode(lang); base != lang {
		if v, ok := t.lookup(base); ok {
			return v
		}
	}
	if v, ok := t.lookup(i18n.DefaultLang); ok {
		return v
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := t.lookup(k); ok {
			return v
		}
	}
	return ""
}

func (t LocalizedText) lookup(lang string) (string, bool) {
	if lang == "" {
		return "", false
	}
	v, ok := t[lang]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Normalized lower-cases keys and drops blank values.
func (t LocalizedText) Normalized() LocalizedText {
	out := make(LocalizedText, len(t))
	for k, v := range t {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(t))
}

// UnmarshalJSON accepts either an object keyed by language code or a plain
// string, which is stored under the default language.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = LocalizedText{}
		if strings.TrimSpace(s) != "" {
			(*t)[i18n.DefaultLang] = s
		}
		return nil
	}

	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("localized text: %w", err)
	}
	*t = LocalizedText(m)
	return nil
}

// Value stores the map as JSONB.
func (t LocalizedText) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]string(t))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (t *LocalizedText) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = LocalizedText{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("localized text: unsupported scan type %T", src)
	}
	return t.UnmarshalJSON(raw)
}
