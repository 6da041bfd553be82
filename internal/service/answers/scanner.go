package answers

import (
	"github.com/tidwall/gjson"
)

// Map - ключ вопроса -> ключи правильных ответов (в порядке документа).
type Map map[string][]string

// Lookup возвращает правильные ответы, если они известны.
func (m Map) Lookup(questionKey string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	keys, ok := m[questionKey]
	return keys, ok && len(keys) > 0
}

// Scan обходит детальный JSON контента в глубину и собирает ответы с is_correct.
// Пустой или невалидный вход даёт пустую карту.
func Scan(raw []byte) Map {
	out := Map{}
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return out
	}
	return ScanResult(gjson.ParseBytes(raw))
}

// ScanResult - то же самое для уже разобранного значения.
func ScanResult(doc gjson.Result) Map {
	out := Map{}
	walk(doc, out)
	return out
}

func walk(node gjson.Result, acc Map) {
	switch {
	case node.IsObject():
		// вопрос: у него есть attributes.answers
		if list := node.Get("attributes.answers"); list.Exists() {
			var correct []string
			for _, ans := range arrayOf(list) {
				if truthy(ans.Get("attributes.is_correct")) {
					correct = append(correct, key(ans.Get("key")))
				}
			}
			if len(correct) > 0 {
				acc[key(node.Get("key"))] = correct
			}
		}
		// вопросы могут быть вложены глубже - обходим всех детей
		node.ForEach(func(_, child gjson.Result) bool {
			walk(child, acc)
			return true
		})
	case node.IsArray():
		node.ForEach(func(_, child gjson.Result) bool {
			walk(child, acc)
			return true
		})
	}
}

func arrayOf(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func key(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

// truthy - JSON-правдивость: true, ненулевое число, любая непустая строка
// (в том числе "false" - платформа так флаги не отдаёт, строку считаем выставленной).
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	default:
		return false
	}
}
