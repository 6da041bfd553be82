package link

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSegment = errors.New("missing URL segment")
	ErrMissingValue   = errors.New("URL segment has no value")
)

// Link - идентификаторы сессии, вытащенные из URL платформы.
type Link struct {
	Cohort  string
	Module  string
	Session string
	// Content необязателен: есть только в ссылках на конкретный контент
	Content string
}

func (l Link) String() string {
	return fmt.Sprintf("cohort/%s/module/%s/session/%s", l.Cohort, l.Module, l.Session)
}

// Parse разбирает URL вида .../cohort/C/module/M/session/S[/content/X].
// cohort, module и session обязательны; маркер без значения - тоже ошибка.
func Parse(raw string) (Link, error) {
	raw = strings.TrimSpace(raw)
	// фрагмент и query мешают split'у
	if i := strings.IndexAny(raw, "#?"); i >= 0 {
		raw = raw[:i]
	}
	parts := strings.Split(raw, "/")

	var l Link
	var err error
	if l.Cohort, err = segment(parts, "cohort", true); err != nil {
		return Link{}, err
	}
	if l.Module, err = segment(parts, "module", true); err != nil {
		return Link{}, err
	}
	if l.Session, err = segment(parts, "session", true); err != nil {
		return Link{}, err
	}
	if l.Content, err = segment(parts, "content", false); err != nil {
		return Link{}, err
	}
	return l, nil
}

func segment(parts []string, marker string, required bool) (string, error) {
	for i, p := range parts {
		if p != marker {
			continue
		}
		if i+1 >= len(parts) || parts[i+1] == "" {
			return "", fmt.Errorf("%w: %q", ErrMissingValue, marker)
		}
		return parts[i+1], nil
	}
	if required {
		return "", fmt.Errorf("%w: %q", ErrMissingSegment, marker)
	}
	return "", nil
}
