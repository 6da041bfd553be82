package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/tidwall/pretty"

	DTO_http "skillogs_validator/internal/DTO/http"
	"skillogs_validator/internal/cache"
	"skillogs_validator/internal/service/answers"
	"skillogs_validator/internal/service/content"
	"skillogs_validator/internal/service/link"
	"skillogs_validator/internal/service/validation"
	"skillogs_validator/internal/transport/http/platform"
)

// Platform - то, что runner'у нужно от API.
type Platform interface {
	Authenticate(ctx context.Context) error
	FetchSessionContent(ctx context.Context, sessionPath string) ([]byte, error)
	FetchContentDetails(ctx context.Context, contentPath string) ([]byte, error)
	SubmitValidation(ctx context.Context, contentPath string, body DTO_http.ValidationRequest) (platform.Response, error)
}

type Options struct {
	// Time - фиксированное время для каждого под-элемента
	Time         int
	InferAnswers bool
	// ContentOnly: если в URL есть content/<id>, валидируем только его
	ContentOnly bool
	Out         io.Writer
}

// Summary - итог прогона.
type Summary struct {
	Items     int
	Groups    int
	Submitted int
	Failed    int
}

type runner struct {
	platform Platform
	cache    *cache.File
	opts     Options

	info *color.Color
	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

type Runner interface {
	Run(ctx context.Context, rawURL string) (Summary, error)
}

func NewRunner(p Platform, c *cache.File, opts Options) Runner {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &runner{
		platform: p,
		cache:    c,
		opts:     opts,
		info:     color.New(color.FgCyan),
		ok:       color.New(color.FgGreen),
		warn:     color.New(color.FgYellow),
		fail:     color.New(color.FgRed),
	}
}

// Run: разбор URL -> логин -> загрузка -> кэш -> извлечение -> валидация.
// Ошибка возвращается только для фатальных случаев; сбои отдельных PUT лишь логируются.
func (r *runner) Run(ctx context.Context, rawURL string) (Summary, error) {
	var sum Summary

	r.info.Fprintf(r.opts.Out, "Processing URL: %s\n", rawURL)
	l, err := link.Parse(rawURL)
	if err != nil {
		return sum, fmt.Errorf("parse session URL: %w", err)
	}

	if err := r.platform.Authenticate(ctx); err != nil {
		return sum, err
	}

	base := validation.Target{Cohort: l.Cohort, Module: l.Module, Session: l.Session}
	r.info.Fprintf(r.opts.Out, "Fetching session content for %s\n", l)
	raw, err := r.platform.FetchSessionContent(ctx, base.SessionPath())
	if err != nil {
		return sum, err
	}

	// парсим именно то, что легло в кэш
	if err := r.cache.Save(raw); err != nil {
		return sum, err
	}
	if raw, err = r.cache.Load(); err != nil {
		return sum, err
	}

	ex, err := content.Extract(raw)
	if err != nil {
		return sum, fmt.Errorf("%s: %w", r.cache.Path(), err)
	}
	r.reportExtraction(ex)

	items := ex.Items
	if r.opts.ContentOnly && l.Content != "" {
		items = only(items, l.Content)
		if len(items) == 0 {
			r.warn.Fprintf(r.opts.Out, "Warning: content %s not found in session\n", l.Content)
		}
	}
	if len(items) == 0 {
		r.warn.Fprintln(r.opts.Out, "No content found to validate.")
		return sum, nil
	}
	r.info.Fprintf(r.opts.Out, "Found %d items to validate.\n", len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Items++

		target := base
		target.ContentID = item.ID

		var known answers.Map
		detailsFetched := false
		for _, group := range item.Groups {
			if r.opts.InferAnswers && group.IsQuiz() && !detailsFetched {
				if known, err = r.inferAnswers(ctx, target); err != nil {
					return sum, err
				}
				detailsFetched = true
			}
			sum.Groups++
			ok, err := r.submit(ctx, validation.Build(target, group, known, r.opts.Time))
			if ok {
				sum.Submitted++
			} else {
				sum.Failed++
			}
			// повторный логин не удался - дальше без токена смысла нет
			if err != nil {
				return sum, err
			}
		}
	}

	r.info.Fprintf(r.opts.Out, "\nAll validations finished: %d submitted, %d failed.\n", sum.Submitted, sum.Failed)
	return sum, nil
}

func (r *runner) reportExtraction(ex content.Extraction) {
	out := r.opts.Out
	fmt.Fprintln(out, "--- Pagination check ---")
	fmt.Fprintf(out, "Total in pagination : %d\n", ex.Expected)
	fmt.Fprintf(out, "Items found         : %d\n", ex.Found)
	if ex.CountMismatch() {
		r.warn.Fprintln(out, "Warning: item count does not match pagination total.")
	} else {
		r.ok.Fprintln(out, "Counts match.")
	}
	fmt.Fprintln(out, "------------------------")

	if ex.SkippedItems > 0 {
		r.warn.Fprintf(out, "Warning: skipped %d items without id\n", ex.SkippedItems)
	}
	if ex.DroppedGroups > 0 {
		r.warn.Fprintf(out, "Warning: dropped %d empty layout groups\n", ex.DroppedGroups)
	}
}

// inferAnswers - необязательная стратегия; при ошибке остаёмся на fallback.
// Фатальна только ошибка авторизации.
func (r *runner) inferAnswers(ctx context.Context, target validation.Target) (answers.Map, error) {
	r.info.Fprintf(r.opts.Out, "   Looking up answers for quiz %s...\n", target.ContentID)
	raw, err := r.platform.FetchContentDetails(ctx, target.Path())
	if err != nil {
		if errors.Is(err, platform.ErrAuth) {
			return nil, err
		}
		r.warn.Fprintf(r.opts.Out, "   Warning: could not fetch details for %s: %v\n", target.ContentID, err)
		return nil, nil
	}
	return answers.Scan(raw), nil
}

// submit возвращает ok=false для сбоя отдельного PUT; ошибка - только ErrAuth.
func (r *runner) submit(ctx context.Context, req validation.Request) (bool, error) {
	out := r.opts.Out
	for _, res := range req.Resolutions {
		switch res.Source {
		case validation.SourceInferred:
			fmt.Fprintf(out, "   -> Answer found for %s: %v\n", res.Key, res.Answer)
		case validation.SourceFallback:
			fmt.Fprintf(out, "   -> Falling back to first answer for %s\n", res.Key)
		}
	}

	globalKey := "<null>"
	if k := req.Body.Payload.Key; k != nil {
		globalKey = *k
	}

	fmt.Fprintf(out, "\n--- Validation %s ---\n", req.Target.ContentID)
	fmt.Fprintf(out, "Request URL: %s\n", req.Target.Path())

	resp, err := r.platform.SubmitValidation(ctx, req.Target.Path(), req.Body)
	if resp.Status != 0 {
		fmt.Fprintf(out, "Status Code: %d\n", resp.Status)
		fmt.Fprintln(out, resp.Summary())
	}
	if err != nil {
		kind := "error"
		switch {
		case errors.Is(err, platform.ErrAuth):
			kind = "authentication"
		case platform.IsUnauthorized(err):
			kind = "unauthorized, session reset"
		case platform.IsTimeout(err):
			kind = "timeout"
		}
		r.fail.Fprintf(out, "✗ Failed to validate %s (%s): %v\n", req.Target.ContentID, kind, err)
		fmt.Fprintf(out, "Failed payload: %s\n", prettyPayload(req.Body))
		if errors.Is(err, platform.ErrAuth) {
			return false, err
		}
		return false, nil
	}

	r.ok.Fprintf(out, "✓ Validated %s (Global: %s)\n", req.Target.ContentID, globalKey)
	return true, nil
}

func only(items []content.Item, id string) []content.Item {
	for _, it := range items {
		if it.ID == id {
			return []content.Item{it}
		}
	}
	return nil
}

func prettyPayload(body DTO_http.ValidationRequest) string {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("%+v", body)
	}
	return string(pretty.Pretty(raw))
}
