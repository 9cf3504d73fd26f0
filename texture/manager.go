package texture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// TemplateProvider supplies texture templates. It is an external
// collaborator; the manager only consumes its records.
type TemplateProvider interface {
	Templates(ctx context.Context) ([]Template, error)
}

// Prevalidator is an optional capability of a TemplateProvider: checking
// templates before offering them to a user. Capability is expressed by
// interface assertion, never by runtime property probing.
type Prevalidator interface {
	PrevalidateTemplates(ctx context.Context) error
}

// Manager orchestrates texture load-through-cache for templates.
//
// Manager is safe for concurrent use.
type Manager struct {
	loader  *Loader
	cache   *Cache
	baseURL string
	log     *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLoader replaces the default loader.
func WithLoader(l *Loader) ManagerOption {
	return func(m *Manager) { m.loader = l }
}

// WithCache replaces the default cache.
func WithCache(c *Cache) ManagerOption {
	return func(m *Manager) { m.cache = c }
}

// WithBaseURL sets the asset host prefix joined with template filenames.
func WithBaseURL(u string) ManagerOption {
	return func(m *Manager) { m.baseURL = u }
}

// WithManagerLogger sets the manager's logger.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager with a default loader and cache.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		loader: NewLoader(),
		cache:  NewCache(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadTexture returns the paper texture for a template, serving from the
// cache when possible. Cache misses load via the retrying loader and are
// stored subject to the eviction policy.
func (m *Manager) LoadTexture(ctx context.Context, tpl Template) (*PaperTexture, error) {
	if tpl.ID == "" {
		return nil, fmt.Errorf("%w: empty template id", ErrTemplateNotFound)
	}
	if tex, ok := m.cache.Get(tpl.ID); ok {
		return tex, nil
	}

	img, err := m.loader.LoadImage(ctx, m.resolveURL(tpl.Filename))
	if err != nil {
		return nil, err
	}

	tex := &PaperTexture{Base: img, Loaded: true}
	if tpl.LinesFilename != "" {
		lines, err := m.loader.LoadImage(ctx, m.resolveURL(tpl.LinesFilename))
		if err != nil {
			m.log.Warn("ruled-lines overlay failed to load, rendering plain paper",
				"template", tpl.ID, "error", err)
		} else {
			tex.Lines = lines
		}
	}
	m.cache.Set(tpl.ID, tex)
	m.log.Debug("texture loaded", "template", tpl.ID, "pressure", m.cache.Pressure())
	return tex, nil
}

// Prevalidate runs the provider's optional prevalidation capability, then
// checks every template's format eagerly so broken templates surface
// before a user picks them.
func (m *Manager) Prevalidate(ctx context.Context, provider TemplateProvider) error {
	if pv, ok := provider.(Prevalidator); ok {
		if err := pv.PrevalidateTemplates(ctx); err != nil {
			return fmt.Errorf("texture: provider prevalidation: %w", err)
		}
	}

	templates, err := provider.Templates(ctx)
	if err != nil {
		return fmt.Errorf("texture: list templates: %w", err)
	}
	for _, tpl := range templates {
		if err := ValidateFormat(tpl.Filename); err != nil {
			return fmt.Errorf("texture: template %s: %w", tpl.ID, err)
		}
		if tpl.LinesFilename != "" {
			if err := ValidateFormat(tpl.LinesFilename); err != nil {
				return fmt.Errorf("texture: template %s lines overlay: %w", tpl.ID, err)
			}
		}
	}
	return nil
}

// Cache exposes the underlying cache for stats and adaptive callers.
func (m *Manager) Cache() *Cache { return m.cache }

func (m *Manager) resolveURL(filename string) string {
	if m.baseURL == "" || strings.Contains(filename, "://") {
		return filename
	}
	return strings.TrimSuffix(m.baseURL, "/") + "/" + strings.TrimPrefix(filename, "/")
}
