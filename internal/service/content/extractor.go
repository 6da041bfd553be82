package content

import (
	"errors"

	"github.com/tidwall/gjson"
)

// LayoutQuiz - global_layout квизов; всё остальное считается обычным контентом.
const LayoutQuiz = "flexible_quiz"

var ErrInvalidDocument = errors.New("session content is not valid JSON")

// SubItem - минимальная единица, которую отмечаем как "done".
type SubItem struct {
	Key    string
	Layout string
	// Answers - варианты ответа в порядке документа (для fallback-стратегии)
	Answers []string
}

// LayoutGroup - блок контента или квиз со своими под-элементами.
type LayoutGroup struct {
	// nil, если global_key в документе null или отсутствует
	GlobalKey    *string
	GlobalLayout string
	Items        []SubItem
}

func (g LayoutGroup) IsQuiz() bool {
	return g.GlobalLayout == LayoutQuiz
}

// Item - элемент сессии и его непустые layout-группы.
type Item struct {
	ID     string
	Groups []LayoutGroup
}

type Extraction struct {
	// Expected - pagination.total, Found - реальная длина data
	Expected int
	Found    int
	Items    []Item

	SkippedItems  int
	DroppedGroups int
}

// CountMismatch - только диагностика, на обработку не влияет.
func (e Extraction) CountMismatch() bool {
	return e.Expected != e.Found
}

// Extract разбирает JSON контента сессии в упорядоченный список элементов.
func Extract(raw []byte) (Extraction, error) {
	if !gjson.ValidBytes(raw) {
		return Extraction{}, ErrInvalidDocument
	}
	doc := gjson.ParseBytes(raw)

	var out Extraction
	out.Expected = int(doc.Get("pagination.total").Int())

	data := doc.Get("data")
	if !data.IsArray() {
		return out, nil
	}
	items := data.Array()
	out.Found = len(items)

	// повторный id перезаписывает предыдущий, позиция сохраняется
	seen := make(map[string]int, len(items))
	for _, item := range items {
		id := itemID(item.Get("id"))
		if id == "" {
			out.SkippedItems++
			continue
		}

		groups := []LayoutGroup{}
		for _, lg := range arrayOf(item.Get("flexible_content_layout_data")) {
			g := LayoutGroup{
				GlobalKey:    optionalString(lg.Get("key")),
				GlobalLayout: scalarString(lg.Get("layout")),
			}
			// квизы лежат в flexible_quiz, а не в flexible_content
			for _, entry := range arrayOf(lg.Get("attributes.flexible_content")) {
				g.Items = append(g.Items, subItem(entry))
			}
			for _, entry := range arrayOf(lg.Get("attributes.flexible_quiz")) {
				g.Items = append(g.Items, subItem(entry))
			}
			// пустой data в запросе API отвергает с 422
			if len(g.Items) == 0 {
				out.DroppedGroups++
				continue
			}
			groups = append(groups, g)
		}

		if idx, ok := seen[id]; ok {
			out.Items[idx].Groups = groups
			continue
		}
		seen[id] = len(out.Items)
		out.Items = append(out.Items, Item{ID: id, Groups: groups})
	}

	return out, nil
}

func subItem(entry gjson.Result) SubItem {
	return SubItem{
		Key:     scalarString(entry.Get("key")),
		Layout:  scalarString(entry.Get("layout")),
		Answers: candidateAnswers(entry),
	}
}

// candidateAnswers: список answers (скаляры или объекты с key),
// если он ничего не дал - ключи attributes.answers.
func candidateAnswers(entry gjson.Result) []string {
	var out []string
	for _, a := range arrayOf(entry.Get("answers")) {
		v := a
		if a.IsObject() {
			v = a.Get("key")
		}
		if s := scalarString(v); s != "" && !v.IsObject() && !v.IsArray() {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, a := range arrayOf(entry.Get("attributes.answers")) {
		if k := scalarString(a.Get("key")); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func itemID(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		if r.Num == 0 {
			return ""
		}
		return r.Raw
	default:
		return ""
	}
}

func arrayOf(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func scalarString(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

func optionalString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := scalarString(r)
	return &s
}
