package feed

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"tapnews/pkg/news"
)

// Source is the subset of the upstream client the aggregator needs.
type Source interface {
	TopHeadlines(ctx context.Context, q news.HeadlinesQuery) ([]news.Article, error)
	Everything(ctx context.Context, q news.EverythingQuery) ([]news.Article, error)
	Search(ctx context.Context, query string, pageSize int) ([]news.Article, error)
}

var DefaultKeywords = []string{
	"indonesia", "jakarta", "bandung", "surabaya", "bali",
	"politik", "ekonomi", "teknologi", "pendidikan", "kesehatan",
	"olahraga", "budaya", "kuliner", "pariwisata",
	"pemerintah",
}

type Options struct {
	LocalPageSize    int
	UpstreamPageSize int
	FallbackPageSize int
	SearchPageSize   int
	Country          string
	Language         string
	SortBy           string
	Keywords         []string
	// DefaultQuery is the last keyword search tried before reporting no results.
	DefaultQuery string

	// Rand drives shuffling and keyword choice. Each aggregator needs its own.
	Rand   *rand.Rand
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		LocalPageSize:    10,
		UpstreamPageSize: 20,
		FallbackPageSize: 10,
		SearchPageSize:   20,
		Country:          "id",
		Language:         "id",
		SortBy:           "publishedAt",
		Keywords:         DefaultKeywords,
		DefaultQuery:     "indonesia",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LocalPageSize <= 0 {
		o.LocalPageSize = d.LocalPageSize
	}
	if o.UpstreamPageSize <= 0 {
		o.UpstreamPageSize = d.UpstreamPageSize
	}
	if o.FallbackPageSize <= 0 {
		o.FallbackPageSize = d.FallbackPageSize
	}
	if o.SearchPageSize <= 0 {
		o.SearchPageSize = d.SearchPageSize
	}
	if o.Country == "" {
		o.Country = d.Country
	}
	if o.Language == "" {
		o.Language = d.Language
	}
	if o.SortBy == "" {
		o.SortBy = d.SortBy
	}
	if o.DefaultQuery == "" {
		o.DefaultQuery = d.DefaultQuery
	}
	if len(o.Keywords) == 0 {
		o.Keywords = d.Keywords
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Aggregator pages through the upstream feed for one reader. The visible window is
// always a prefix of the accumulation buffer and only shrinks on reset.
type Aggregator struct {
	source Source
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	buffer     []news.Article
	seen       map[string]struct{}
	visibleEnd int
	cursor     int
	terminal   bool
	loading    bool
	state      State
	// gen changes on every reset; results of loads started before it are dropped.
	gen uint64

	notifyMu    sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int
}

func NewAggregator(source Source, opts Options) *Aggregator {
	opts = opts.withDefaults()
	return &Aggregator{
		source:      source,
		opts:        opts,
		logger:      opts.Logger,
		seen:        make(map[string]struct{}),
		cursor:      1,
		state:       State{Status: StatusIdle},
		subscribers: make(map[int]func(State)),
	}
}

// LoadPage grows the visible window by one local page, fetching from upstream.
// With reset it first discards the buffer and starts again from page one, even
// while an older load is still in flight; that load's result is then dropped.
// Other calls that arrive while a fetch is in flight return the current state.
func (a *Aggregator) LoadPage(ctx context.Context, reset bool) State {
	a.mu.Lock()
	if reset {
		a.gen++
		a.buffer = nil
		a.seen = make(map[string]struct{})
		a.visibleEnd = 0
		a.cursor = 1
		a.terminal = false
		a.loading = false
		a.state = State{Status: StatusIdle}
	}

	if a.loading {
		st := a.state
		a.mu.Unlock()
		return st
	}

	if a.terminal {
		st := State{Status: StatusLoaded, Articles: a.windowLocked()}
		subs := a.setStateLocked(st)
		a.mu.Unlock()
		a.notify(subs, st)
		return st
	}

	a.loading = true
	gen := a.gen
	keyword := a.opts.Keywords[a.opts.Rand.IntN(len(a.opts.Keywords))]
	loading := State{Status: StatusLoading, Articles: a.windowLocked()}
	subs := a.setStateLocked(loading)
	a.mu.Unlock()
	a.notify(subs, loading)

	st := a.fetchPage(ctx, gen, keyword, loading.Articles)
	return a.finish(gen, st)
}

func (a *Aggregator) fetchPage(ctx context.Context, gen uint64, keyword string, visible []news.Article) State {
	batch, primaryErr := a.source.TopHeadlines(ctx, news.HeadlinesQuery{
		Country:  a.opts.Country,
		PageSize: a.opts.UpstreamPageSize,
	})
	if primaryErr == nil && len(batch) > 0 {
		a.logger.Info("fetched top headlines", "count", len(batch), "country", a.opts.Country)
		return a.accept(gen, batch)
	}

	if primaryErr != nil {
		primaryErr = ClassifyContext(ctx, primaryErr)
		if primaryErr != ErrRateLimited {
			a.logger.Error("error fetching top headlines", "error", primaryErr)
			return failed(primaryErr, visible)
		}
		a.logger.Warn("top headlines rate limited, trying keyword search", "keyword", keyword)
	} else {
		a.logger.Info("no top headlines, trying keyword search", "keyword", keyword)
	}

	batch, secondaryErr := a.everything(ctx, keyword)
	if secondaryErr == nil && len(batch) > 0 {
		a.logger.Info("fetched keyword articles", "count", len(batch), "keyword", keyword)
		return a.accept(gen, batch)
	}

	if secondaryErr != nil {
		secondaryErr = ClassifyContext(ctx, secondaryErr)
		if secondaryErr == ErrRateLimited {
			return a.rateLimitFallback(ctx, gen, visible)
		}
		a.logger.Error("error fetching keyword articles", "error", secondaryErr, "keyword", keyword)
		return failed(secondaryErr, visible)
	}

	if primaryErr != nil {
		return failed(primaryErr, visible)
	}

	return a.exhausted(ctx, gen, keyword, visible)
}

func (a *Aggregator) everything(ctx context.Context, keyword string) ([]news.Article, error) {
	return a.source.Everything(ctx, news.EverythingQuery{
		Query:    keyword,
		SortBy:   a.opts.SortBy,
		Language: a.opts.Language,
		PageSize: a.opts.UpstreamPageSize,
	})
}

// accept appends a freshly fetched batch and recomputes the window and cursor.
func (a *Aggregator) accept(gen uint64, batch []news.Article) State {
	shuffled := slices.Clone(batch)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		return a.state
	}

	a.opts.Rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	added := 0
	for _, article := range shuffled {
		if _, dup := a.seen[article.URL]; dup {
			continue
		}
		a.seen[article.URL] = struct{}{}
		a.buffer = append(a.buffer, article)
		added++
	}

	end := min(len(a.buffer), a.cursor*a.opts.LocalPageSize)
	a.visibleEnd = end
	window := a.windowLocked()

	a.terminal = len(batch) < a.opts.UpstreamPageSize || end >= len(a.buffer)
	if !a.terminal {
		a.cursor++
	}

	a.logger.Debug("page accepted", "added", added, "buffer", len(a.buffer), "window", end, "cursor", a.cursor, "terminal", a.terminal)

	return State{Status: StatusLoaded, Articles: window}
}

func (a *Aggregator) rateLimitFallback(ctx context.Context, gen uint64, visible []news.Article) State {
	a.mu.Lock()
	empty := len(a.buffer) == 0
	a.mu.Unlock()

	if !empty {
		a.logger.Warn("keyword search rate limited, keeping buffered articles")
		return failed(ErrRateLimited, visible)
	}

	batch, err := a.source.TopHeadlines(ctx, news.HeadlinesQuery{
		Country:  a.opts.Country,
		PageSize: a.opts.FallbackPageSize,
	})
	if err != nil || len(batch) == 0 {
		a.logger.Error("fallback loading also failed", "error", err, "count", len(batch))
		return failed(ErrRateLimited, visible)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		return a.state
	}

	for _, article := range batch {
		if _, dup := a.seen[article.URL]; dup {
			continue
		}
		a.seen[article.URL] = struct{}{}
		a.buffer = append(a.buffer, article)
	}

	a.visibleEnd = min(len(a.buffer), a.opts.LocalPageSize)
	return State{
		Status:   StatusLoaded,
		Articles: a.windowLocked(),
		Err:      ErrRateLimited,
		Message:  Message(ErrRateLimited),
	}
}

// exhausted handles both upstream modes coming back empty. With nothing buffered
// yet it makes one last keyword search for DefaultQuery before giving up.
func (a *Aggregator) exhausted(ctx context.Context, gen uint64, keyword string, visible []news.Article) State {
	a.mu.Lock()
	empty := len(a.buffer) == 0
	if !empty && gen == a.gen {
		a.terminal = true
	}
	a.mu.Unlock()

	if !empty {
		return State{Status: StatusLoaded, Articles: visible}
	}

	if keyword != a.opts.DefaultQuery {
		batch, err := a.everything(ctx, a.opts.DefaultQuery)
		if err == nil && len(batch) > 0 {
			a.logger.Info("fetched default query articles", "count", len(batch), "query", a.opts.DefaultQuery)
			return a.accept(gen, batch)
		}
		if err != nil {
			a.logger.Error("error fetching default query articles", "error", err, "query", a.opts.DefaultQuery)
		}
	}

	a.logger.Warn("no articles found from both endpoints")
	return failed(ErrNoResults, visible)
}

// Search filters the visible window and only asks upstream when nothing matches.
// Remote results replace the window; the buffer and cursor are left alone.
func (a *Aggregator) Search(ctx context.Context, query string) State {
	query = strings.TrimSpace(query)

	a.mu.Lock()
	if a.loading || query == "" {
		st := a.state
		a.mu.Unlock()
		return st
	}

	visible := a.state.Articles
	local := filterArticles(visible, query)
	if len(local) > 0 {
		st := State{Status: StatusLoaded, Articles: local}
		subs := a.setStateLocked(st)
		a.mu.Unlock()
		a.notify(subs, st)
		a.logger.Info("found articles locally", "count", len(local), "query", query)
		return st
	}

	a.loading = true
	gen := a.gen
	loading := State{Status: StatusLoading, Articles: visible}
	subs := a.setStateLocked(loading)
	a.mu.Unlock()
	a.notify(subs, loading)

	results, err := a.source.Search(ctx, query, a.opts.SearchPageSize)
	switch {
	case err == nil && len(results) > 0:
		a.logger.Info("found articles from search", "count", len(results), "query", query)
		return a.finish(gen, State{Status: StatusLoaded, Articles: results})
	case err == nil:
		a.logger.Info("no articles matching query", "query", query)
		return a.finish(gen, failed(ErrNoResults, visible))
	}

	a.logger.Error("error searching upstream, falling back to local filter", "error", err, "query", query)
	if len(local) > 0 {
		return a.finish(gen, State{Status: StatusLoaded, Articles: local})
	}
	return a.finish(gen, failed(ErrNoResults, visible))
}

func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		BufferLen: len(a.buffer),
		Cursor:    a.cursor,
		Terminal:  a.terminal,
		Loading:   a.loading,
	}
}

// Subscribe registers fn for every state change. fn must not block.
func (a *Aggregator) Subscribe(fn func(State)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

// finish publishes the result of a load started in generation gen. A reset since
// then owns the aggregator, so a stale result is dropped.
func (a *Aggregator) finish(gen uint64, st State) State {
	a.mu.Lock()
	if gen != a.gen {
		current := a.state
		a.mu.Unlock()
		return current
	}
	a.loading = false
	subs := a.setStateLocked(st)
	a.mu.Unlock()
	a.notify(subs, st)
	return st
}

func (a *Aggregator) setStateLocked(st State) []func(State) {
	a.state = st
	subs := make([]func(State), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (a *Aggregator) notify(subs []func(State), st State) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (a *Aggregator) windowLocked() []news.Article {
	return slices.Clone(a.buffer[:a.visibleEnd])
}

func failed(err error, visible []news.Article) State {
	return State{Status: StatusFailed, Articles: visible, Err: err, Message: Message(err)}
}

func filterArticles(articles []news.Article, query string) []news.Article {
	q := strings.ToLower(query)
	var matches []news.Article
	for _, article := range articles {
		if strings.Contains(strings.ToLower(article.Title), q) ||
			strings.Contains(strings.ToLower(article.Description), q) {
			matches = append(matches, article)
		}
	}
	return matches
}
