package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"slotnotify/internal/common"
	"slotnotify/internal/domain/notification"

	"github.com/vanng822/go-premailer/premailer"
)

var _ notification.TemplateRenderer = (*Engine)(nil)

// baseName is the shared layout every content template is wrapped in.
const baseName = "base"

var errInvalidName = errors.New("invalid template name")

// Engine renders notification templates using Go's html/template package.
// Compiled templates are cached by name for the life of the process.
type Engine struct {
	fsys      fs.FS
	inlineCSS bool
	now       func() time.Time

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the injected currentYear field.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCSSInlining toggles moving <style> rules into style attributes.
func WithCSSInlining(enabled bool) Option {
	return func(e *Engine) { e.inlineCSS = enabled }
}

// NewEngine creates a template engine reading <name>.html files from fsys.
// Nothing is parsed until first use or Preload.
func NewEngine(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{
		fsys:      fsys,
		inlineCSS: true,
		now:       time.Now,
		cache:     make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDirEngine creates an engine over a templates directory on disk.
// An empty dir selects the embedded default templates.
func NewDirEngine(dir string, opts ...Option) (*Engine, error) {
	if dir == "" {
		return NewEngine(Defaults(), opts...), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening templates dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %s is not a directory", dir)
	}
	return NewEngine(os.DirFS(dir), opts...), nil
}

// Preload compiles the base layout and the given templates eagerly.
func (e *Engine) Preload(ctx context.Context, names ...notification.TemplateName) error {
	if _, err := e.load(ctx, baseName); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := e.load(ctx, string(name)); err != nil {
			return err
		}
	}
	return nil
}

// Render executes the content template with data plus currentYear, wraps the
// result in the base layout under "content" and inlines CSS.
func (e *Engine) Render(ctx context.Context, name notification.TemplateName, data map[string]any) (*notification.Rendered, error) {
	content, err := e.load(ctx, string(name))
	if err != nil {
		return nil, err
	}
	base, err := e.load(ctx, baseName)
	if err != nil {
		return nil, err
	}

	year := e.now().Year()
	contentData := make(map[string]any, len(data)+1)
	for k, v := range data {
		contentData[k] = v
	}
	contentData["currentYear"] = year

	var body bytes.Buffer
	if err := content.Execute(&body, contentData); err != nil {
		return nil, common.NewTemplateRenderError(string(name), err)
	}

	layoutData := map[string]any{
		"content":     template.HTML(body.String()),
		"currentYear": year,
		"subject":     data["subject"],
	}

	var out bytes.Buffer
	if err := base.Execute(&out, layoutData); err != nil {
		return nil, common.NewTemplateRenderError(string(name), err)
	}

	html := out.String()
	if e.inlineCSS {
		html, err = inline(html)
		if err != nil {
			return nil, common.NewTemplateRenderError(string(name), err)
		}
	}

	return &notification.Rendered{
		HTML: html,
		Text: stripHTML(body.String()),
	}, nil
}

// load returns the cached template or reads and parses it.
// Concurrent misses may parse twice; the result is identical so the last write wins.
func (e *Engine) load(ctx context.Context, name string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, common.NewTemplateLoadError(name, err)
	}
	if !validName(name) {
		return nil, common.NewTemplateLoadError(name, errInvalidName)
	}

	raw, err := fs.ReadFile(e.fsys, name+".html")
	if err != nil {
		return nil, common.NewTemplateLoadError(name, err)
	}

	tmpl, err = template.New(name).Funcs(funcs).Parse(string(raw))
	if err != nil {
		return nil, common.NewTemplateLoadError(name, err)
	}

	e.mu.Lock()
	e.cache[name] = tmpl
	e.mu.Unlock()

	return tmpl, nil
}

// Cached reports whether a template is already compiled.
func (e *Engine) Cached(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.cache[name]
	return ok
}

func validName(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// inline moves <style> rules into element style attributes for email clients
// that strip style blocks.
func inline(html string) (string, error) {
	p, err := premailer.NewPremailerFromString(html, premailer.NewOptions())
	if err != nil {
		return "", fmt.Errorf("parsing html for css inlining: %w", err)
	}
	out, err := p.Transform()
	if err != nil {
		return "", fmt.Errorf("inlining css: %w", err)
	}
	return out, nil
}

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	entities     = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#34;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// stripHTML removes HTML tags and collapses whitespace to produce a plain-text version.
func stripHTML(s string) string {
	text := tagRe.ReplaceAllString(s, " ")
	text = entities.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
