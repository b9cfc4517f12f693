package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"articledash/internal/api"
	"articledash/internal/importer"
	"articledash/internal/model"
)

// fakeAPI records every call and answers from canned results.
type fakeAPI struct {
	mu sync.Mutex

	listFn func(q api.ListQuery) (*api.Result, error)
	getRes *api.Result
	getErr error

	writeErr  error
	deleteErr error

	calls     []string
	queries   []api.ListQuery
	lastInput model.ArticleInput
}

func listResult(lastPage int, articles ...model.Article) *api.Result {
	return &api.Result{Kind: api.KindList, Articles: articles, PageInfo: model.PageInfo{LastPage: lastPage}}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) List(ctx context.Context, q api.ListQuery) (*api.Result, error) {
	f.record("list")
	f.mu.Lock()
	f.queries = append(f.queries, q)
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return listResult(1), nil
	}
	return fn(q)
}

func (f *fakeAPI) Get(ctx context.Context, id int) (*api.Result, error) {
	f.record(fmt.Sprintf("get %d", id))
	return f.getRes, f.getErr
}

func (f *fakeAPI) Create(ctx context.Context, in model.ArticleInput) (*api.Result, error) {
	f.record("create")
	f.mu.Lock()
	f.lastInput = in
	f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &api.Result{Kind: api.KindSingle, Article: &model.Article{ID: 100, Title: in.Title, Content: in.Content}}, nil
}

func (f *fakeAPI) Update(ctx context.Context, id int, in model.ArticleInput) (*api.Result, error) {
	f.record(fmt.Sprintf("update %d", id))
	f.mu.Lock()
	f.lastInput = in
	f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &api.Result{Kind: api.KindSingle, Article: &model.Article{ID: id, Title: in.Title, Content: in.Content}}, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id int) (*api.Result, error) {
	f.record(fmt.Sprintf("delete %d", id))
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &api.Result{Kind: api.KindEmpty}, nil
}

// fakeClock fires timers only when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeImporter struct {
	page *importer.Page
	err  error
	urls []string
	// during runs while the download is in flight.
	during func()
}

func (f *fakeImporter) Import(ctx context.Context, rawURL string) (*importer.Page, error) {
	f.urls = append(f.urls, rawURL)
	if f.during != nil {
		f.during()
	}
	return f.page, f.err
}
