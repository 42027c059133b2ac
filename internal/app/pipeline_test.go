package app

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	domprod "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/task"
	"github.com/kailas-cloud/shopsearch/internal/repository/catalog"
	"github.com/kailas-cloud/shopsearch/internal/repository/vectorindex"
	"github.com/kailas-cloud/shopsearch/internal/usecase/indexsync"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
	semanticuc "github.com/kailas-cloud/shopsearch/internal/usecase/semantic"
)

const wordDims = 64

// wordEmbedder hashes lower-cased words into a fixed bag-of-words vector.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	vec := make([]float32, wordDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%wordDims]++
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// memIndexStore is an in-memory hash store answering KNN by cosine distance.
type memIndexStore struct {
	mu      sync.Mutex
	entries map[string]map[string]string
}

func newMemIndexStore() *memIndexStore {
	return &memIndexStore{entries: map[string]map[string]string{}}
}

func (m *memIndexStore) Ping(context.Context) error { return nil }

func (m *memIndexStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = fields
	return nil
}

func (m *memIndexStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memIndexStore) CreateIndex(context.Context, *db.IndexDefinition) error { return nil }

func (m *memIndexStore) IndexExists(context.Context, string) (bool, error) { return true, nil }

func (m *memIndexStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := &db.SearchResult{}
	for key, fields := range m.entries {
		vec, err := db.DecodeVector([]byte(fields["vector"]))
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(q.ReturnFields))
		for _, f := range q.ReturnFields {
			out[f] = fields[f]
		}
		res.Entries = append(res.Entries, db.SearchEntry{Key: key, Distance: cosineDistance(q.Vector, vec), Fields: out})
	}
	sort.Slice(res.Entries, func(i, j int) bool { return res.Entries[i].Distance < res.Entries[j].Distance })
	res.Total = len(res.Entries)
	if len(res.Entries) > q.K {
		res.Entries = res.Entries[:q.K]
	}
	return res, nil
}

func (m *memIndexStore) text(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e["text"], ok
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// ticketSync records the tickets of every handed-off mutation.
type ticketSync struct {
	*indexsync.Service
	mu      sync.Mutex
	pending []*task.Ticket
}

func (s *ticketSync) OnCreate(ctx context.Context, p domprod.Product) *task.Ticket {
	return s.track(s.Service.OnCreate(ctx, p))
}

func (s *ticketSync) OnUpdate(ctx context.Context, p domprod.Product) *task.Ticket {
	return s.track(s.Service.OnUpdate(ctx, p))
}

func (s *ticketSync) OnDelete(ctx context.Context, id string) *task.Ticket {
	return s.track(s.Service.OnDelete(ctx, id))
}

func (s *ticketSync) track(t *task.Ticket) *task.Ticket {
	s.mu.Lock()
	s.pending = append(s.pending, t)
	s.mu.Unlock()
	return t
}

func (s *ticketSync) await(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, tk := range pending {
		if err := tk.Wait(ctx); err != nil {
			t.Fatalf("index write failed: %v", err)
		}
	}
}

type pipeline struct {
	products *productuc.Service
	semantic *semanticuc.Service
	sync     *ticketSync
	store    *memIndexStore
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := catalog.Migrate(context.Background(), gdb); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = catalog.Close(gdb) })

	repo := catalog.New(gdb)
	store := newMemIndexStore()
	index := vectorindex.New(store, wordEmbedder{}, vectorindex.Config{
		KeyPrefix:    "test:",
		Dimensions:   wordDims,
		WriteTimeout: time.Second,
		QueryTimeout: time.Second,
	}, zap.NewNop())

	dispatcher := indexsync.NewDispatcher(indexsync.DispatcherConfig{Workers: 2, QueueSize: 16, TaskTimeout: time.Second}, zap.NewNop())
	syncSvc := &ticketSync{Service: indexsync.New(index, repo, dispatcher, indexsync.Config{}, zap.NewNop())}
	t.Cleanup(func() { _ = syncSvc.Close(context.Background()) })

	return &pipeline{
		products: productuc.New(repo, syncSvc),
		semantic: semanticuc.New(index, repo, 10, 50),
		sync:     syncSvc,
		store:    store,
	}
}

func widgetAttrs(t *testing.T, title, specs string) domprod.Attrs {
	t.Helper()
	a := domprod.Attrs{Title: title, Description: "Compact " + strings.ToLower(title) + " for desks", Price: 25}
	if specs != "" {
		if err := a.Specifications.UnmarshalJSON([]byte(specs)); err != nil {
			t.Fatalf("specs: %v", err)
		}
	}
	return a
}

func TestPipeline_CreatedProductIsSearchable(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	widget, err := p.products.Create(ctx, widgetAttrs(t, "Widget", ""))
	if err != nil {
		t.Fatalf("create widget: %v", err)
	}
	if _, err := p.products.Create(ctx, domprod.Attrs{Title: "Gadget", Description: "Portable gadget for travel", Price: 40}); err != nil {
		t.Fatalf("create gadget: %v", err)
	}
	p.sync.await(t)

	hits, err := p.semantic.Search(ctx, "widget", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Product().ID() != widget.ID() {
		t.Fatalf("hits = %+v, want exactly %s", hits, widget.ID())
	}
	if s := hits[0].Score(); s < 0 || s > 1 || !hits[0].Ranked() {
		t.Fatalf("score = %v ranked = %v", s, hits[0].Ranked())
	}
}

func TestPipeline_UpdateLeavesNoStaleText(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	created, err := p.products.Create(ctx, widgetAttrs(t, "Widget", `{"legacyPort":"VGA","ram":"8GB"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.sync.await(t)

	updated, err := p.products.Update(ctx, created.Slug(), widgetAttrs(t, "Widget Pro", `{"ram":"16GB"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	p.sync.await(t)

	hits, err := p.semantic.Search(ctx, "widget", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Product().ID() != created.ID() || hits[0].Product().Title() != "Widget Pro" {
		t.Fatalf("hits = %+v", hits)
	}

	text, ok := p.store.text("test:product:" + updated.ID())
	if !ok {
		t.Fatal("index entry missing after update")
	}
	if strings.Contains(text, "Legacy Port") || strings.Contains(text, "VGA") || strings.Contains(text, "8GB") {
		t.Fatalf("stale fragment in %q", text)
	}
	if !strings.Contains(text, "Ram: 16GB") {
		t.Fatalf("updated spec missing from %q", text)
	}
}

func TestPipeline_DeletedProductDisappears(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	widget, err := p.products.Create(ctx, widgetAttrs(t, "Widget", ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.sync.await(t)

	if _, err := p.products.Delete(ctx, widget.Slug()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p.sync.await(t)

	hits, err := p.semantic.Search(ctx, "widget", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, h := range hits {
		if h.Product().ID() == widget.ID() {
			t.Fatal("deleted product still returned")
		}
	}
}
