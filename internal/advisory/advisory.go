// Package advisory produces best-effort, non-blocking form warnings
// from an external text-generation call. Local warnings are always
// available immediately; advisory lines arrive in a second phase and
// are dropped when a newer template selection has superseded them.
package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/formvault/formvault/internal/forms"
)

// Advisor is the external collaborator that analyses form data.
type Advisor interface {
	Advise(ctx context.Context, message, contextNote string) (string, error)
}

// Publisher receives a notification when advisory warnings for a
// selection become available.
type Publisher interface {
	PublishAdvisoryReady(userID, templateID string, generation uint64)
}

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxLines     = 3
	defaultDedupePrefix = 20
)

// Config configures a Dispatcher. Advisor may be nil, in which case
// every submission keeps its local warnings and the advisory phase is
// skipped entirely.
type Config struct {
	Advisor Advisor
	Events  Publisher
	Logger  *slog.Logger
	Timeout time.Duration
	// MaxLines caps how many advisory lines are appended.
	MaxLines int
	// DedupePrefix is the number of leading characters used for the
	// best-effort duplicate check against existing warnings.
	DedupePrefix int
}

// Dispatcher owns the per-(user, template) warning state and the single
// in-flight advisory call per selection.
type Dispatcher struct {
	advisor      Advisor
	events       Publisher
	logger       *slog.Logger
	timeout      time.Duration
	maxLines     int
	dedupePrefix int

	mu     sync.Mutex
	states map[string]*state
}

type state struct {
	gen      uint64
	warnings []string
}

// NewDispatcher creates a dispatcher with defaults applied.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = defaultMaxLines
	}
	if cfg.DedupePrefix <= 0 {
		cfg.DedupePrefix = defaultDedupePrefix
	}
	return &Dispatcher{
		advisor:      cfg.Advisor,
		events:       cfg.Events,
		logger:       cfg.Logger,
		timeout:      cfg.Timeout,
		maxLines:     cfg.MaxLines,
		dedupePrefix: cfg.DedupePrefix,
		states:       make(map[string]*state),
	}
}

// Submit records the local warnings for a fresh template selection and
// starts the advisory call for it. Returns the selection's generation;
// any still-running call for an earlier generation will have its result
// discarded.
func (d *Dispatcher) Submit(userID string, t *forms.Template, statuses map[string]forms.FieldStatus, local []string) uint64 {
	key := stateKey(userID, t.ID)

	d.mu.Lock()
	st, ok := d.states[key]
	if !ok {
		st = &state{}
		d.states[key] = st
	}
	st.gen++
	gen := st.gen
	st.warnings = append([]string(nil), local...)
	d.mu.Unlock()

	if d.advisor == nil {
		return gen
	}

	message := buildMessage(t, statuses)
	go d.run(key, userID, t.ID, gen, message, local)
	return gen
}

// Warnings returns the current warning list for a selection: local
// warnings immediately after Submit, the merged superset once the
// advisory call has landed.
func (d *Dispatcher) Warnings(userID, templateID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.states[stateKey(userID, templateID)]
	if !ok {
		return nil
	}
	return append([]string(nil), st.warnings...)
}

func (d *Dispatcher) run(key, userID, templateID string, gen uint64, message string, local []string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	reply, err := d.advisor.Advise(ctx, message, "Mock form validation")
	if err != nil {
		// Advisory failures are never surfaced; the local warnings stand.
		d.logger.Debug("advisory skipped",
			slog.String("template", templateID),
			slog.String("error", err.Error()))
		return
	}

	merged := mergeAdvisory(local, reply, d.maxLines, d.dedupePrefix)

	d.mu.Lock()
	st := d.states[key]
	if st == nil || st.gen != gen {
		d.mu.Unlock()
		d.logger.Debug("advisory result stale, dropped",
			slog.String("template", templateID),
			slog.Uint64("generation", gen))
		return
	}
	st.warnings = merged
	d.mu.Unlock()

	if d.events != nil {
		d.events.PublishAdvisoryReady(userID, templateID, gen)
	}
}

// buildMessage renders the filled field values, in template order, into
// the advisory prompt.
func buildMessage(t *forms.Template, statuses map[string]forms.FieldStatus) string {
	var lines []string
	for _, f := range t.Fields {
		if v := statuses[f.ID].Value; v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", f.ID, v))
		}
	}
	return fmt.Sprintf("Analyze this form data for potential issues. Form type: %s. Fields:\n%s\n\nProvide 2-3 brief warnings about potential errors or mismatches.",
		t.Name, strings.Join(lines, "\n"))
}

// mergeAdvisory appends up to maxLines advisory lines to the existing
// warnings, stripping leading bullet markers and skipping lines whose
// first prefixLen characters already occur in an existing warning.
// The duplicate check is a best-effort heuristic, not an exact match.
func mergeAdvisory(existing []string, reply string, maxLines, prefixLen int) []string {
	out := append([]string(nil), existing...)
	added := 0
	for _, line := range strings.Split(reply, "\n") {
		if added >= maxLines {
			break
		}
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•* ")
		if line == "" {
			continue
		}
		prefix := line
		if len(prefix) > prefixLen {
			prefix = prefix[:prefixLen]
		}
		dup := false
		for _, w := range out {
			if strings.Contains(w, prefix) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, line)
		added++
	}
	return out
}

func stateKey(userID, templateID string) string {
	return userID + "\x00" + templateID
}
