package validation

import (
	"fmt"
	"net/url"

	DTO_http "skillogs_validator/internal/DTO/http"
	"skillogs_validator/internal/service/answers"
	"skillogs_validator/internal/service/content"
)

// Target - куда отправлять валидацию одного элемента контента.
type Target struct {
	Cohort    string
	Module    string
	Session   string
	ContentID string
}

// SessionPath - префикс всех путей сессии.
func (t Target) SessionPath() string {
	return fmt.Sprintf("/api/user/cohort/%s/module/%s/session/%s",
		url.PathEscape(t.Cohort), url.PathEscape(t.Module), url.PathEscape(t.Session))
}

// Path всегда ведёт на flexible_content, даже для квизов:
// эндпоинт flexible_quiz на платформе отвечает 404.
func (t Target) Path() string {
	return fmt.Sprintf("%s/content/%s/flexible_content", t.SessionPath(), url.PathEscape(t.ContentID))
}

type AnswerSource int

const (
	SourceNone AnswerSource = iota
	SourceInferred
	SourceFallback
)

func (s AnswerSource) String() string {
	switch s {
	case SourceInferred:
		return "inferred"
	case SourceFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Resolution - откуда взялся ответ на вопрос квиза.
type Resolution struct {
	Key    string
	Source AnswerSource
	Answer []string
}

type Request struct {
	Target      Target
	Body        DTO_http.ValidationRequest
	Resolutions []Resolution
}

// Build собирает тело PUT для одной layout-группы.
// known может быть nil - тогда для квизов работает только fallback.
func Build(target Target, group content.LayoutGroup, known answers.Map, elapsed int) Request {
	req := Request{
		Target: target,
		Body: DTO_http.ValidationRequest{
			Payload: DTO_http.ValidationPayload{
				Key:    group.GlobalKey,
				Layout: group.GlobalLayout,
				Data:   make([]DTO_http.ValidationEntry, 0, len(group.Items)),
			},
		},
	}

	for _, item := range group.Items {
		data := DTO_http.ValidationData{Done: true, Time: elapsed}

		if group.IsQuiz() {
			res := resolve(item, known)
			data.Answer = res.Answer
			req.Resolutions = append(req.Resolutions, res)
		}

		req.Body.Payload.Data = append(req.Body.Payload.Data, DTO_http.ValidationEntry{
			Key:    item.Key,
			Layout: item.Layout,
			Data:   data,
		})
	}

	return req
}

func resolve(item content.SubItem, known answers.Map) Resolution {
	// 1. правильный ответ из детального контента
	if keys, ok := known.Lookup(item.Key); ok {
		return Resolution{Key: item.Key, Source: SourceInferred, Answer: append([]string(nil), keys...)}
	}
	// 2. первый вариант - наугад, правильность не гарантирована
	if len(item.Answers) > 0 {
		return Resolution{Key: item.Key, Source: SourceFallback, Answer: []string{item.Answers[0]}}
	}
	return Resolution{Key: item.Key, Source: SourceNone}
}
