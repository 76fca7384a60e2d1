package diet

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"recipe-finder/internal/core/diet/wikidata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKB struct {
	mu       sync.Mutex
	entities map[string]string
	nonVeg   map[string]bool
	failing  map[string]error
	delay    time.Duration

	resolveCalls map[string]int
	askCalls     int
}

func newFakeKB() *fakeKB {
	return &fakeKB{
		entities: map[string]string{
			"kheer":          "Q1",
			"butter chicken": "Q2",
			"egg curry":      "Q3",
			"dal makhani":    "Q4",
		},
		nonVeg:       map[string]bool{"Q2": true, "Q3": true},
		failing:      map[string]error{},
		resolveCalls: map[string]int{},
	}
}

func (f *fakeKB) ResolveEntity(ctx context.Context, name string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(name)
	f.resolveCalls[key]++
	if err, ok := f.failing[key]; ok {
		return "", err
	}
	return f.entities[key], nil
}

func (f *fakeKB) IsNonVegetarian(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.askCalls++
	return f.nonVeg[id], nil
}

func (f *fakeKB) totalResolves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.resolveCalls {
		total += n
	}
	return total
}

func TestClassify_Labels(t *testing.T) {
	c := NewClassifier(newFakeKB(), nil, 1)
	ctx := context.Background()

	assert.Equal(t, LabelVegetarian, c.Classify(ctx, "Kheer"))
	assert.Equal(t, LabelNonVegetarian, c.Classify(ctx, "Butter Chicken"))
	assert.Equal(t, LabelUnknown, c.Classify(ctx, "Mystery Dish"))
}

func TestClassify_CacheHitMakesNoCalls(t *testing.T) {
	kb := newFakeKB()
	c := NewClassifier(kb, nil, 1)
	ctx := context.Background()

	assert.Equal(t, LabelVegetarian, c.Classify(ctx, "Kheer"))
	assert.Equal(t, LabelVegetarian, c.Classify(ctx, "  kheer "))
	assert.Equal(t, LabelVegetarian, c.Classify(ctx, "KHEER"))

	assert.Equal(t, 1, kb.resolveCalls["kheer"])
	assert.Equal(t, 1, kb.askCalls)

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Lookups)
	assert.EqualValues(t, 2, stats.ExternalCalls)
	assert.EqualValues(t, 2, stats.Cache.Hits)
	assert.Equal(t, 1, stats.Cache.Entries)
}

func TestClassify_BlankNames(t *testing.T) {
	kb := newFakeKB()
	c := NewClassifier(kb, nil, 1)

	for _, name := range []string{"", "   ", "\t\n"} {
		assert.Equal(t, LabelUnknown, c.Classify(context.Background(), name))
	}
	assert.Zero(t, kb.totalResolves())
	assert.Zero(t, c.cache.Len())
}

func TestClassify_UnresolvedNameIsCached(t *testing.T) {
	kb := newFakeKB()
	c := NewClassifier(kb, nil, 1)

	assert.Equal(t, LabelUnknown, c.Classify(context.Background(), "Mystery"))
	assert.Equal(t, LabelUnknown, c.Classify(context.Background(), "mystery"))
	assert.Equal(t, 1, kb.resolveCalls["mystery"])
	assert.Zero(t, kb.askCalls)
}

func TestClassifyBatch_FailureDegradesToUnknown(t *testing.T) {
	kb := newFakeKB()
	kb.failing["bad dish"] = &wikidata.LookupError{Op: wikidata.OpSearch, StatusCode: 503, Err: errors.New("unavailable")}
	c := NewClassifier(kb, nil, 1)

	got, err := c.ClassifyBatch(context.Background(), []string{"Bad Dish", "Kheer", "Egg Curry", "bad dish"})
	require.NoError(t, err)

	assert.Equal(t, map[string]Label{
		"Bad Dish":  LabelUnknown,
		"Kheer":     LabelVegetarian,
		"Egg Curry": LabelNonVegetarian,
		"bad dish":  LabelUnknown,
	}, got)
	assert.Equal(t, 1, kb.resolveCalls["bad dish"])
	assert.EqualValues(t, 1, c.Stats().Failures)
}

func TestClassify_ConcurrentSameKeyLooksUpOnce(t *testing.T) {
	kb := newFakeKB()
	kb.delay = 20 * time.Millisecond
	c := NewClassifier(kb, nil, 8)

	var wg sync.WaitGroup
	labels := make([]Label, 10)
	for i := range labels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			labels[i] = c.Classify(context.Background(), "Butter Chicken")
		}()
	}
	wg.Wait()

	for _, l := range labels {
		assert.Equal(t, LabelNonVegetarian, l)
	}
	assert.Equal(t, 1, kb.totalResolves())
}

func TestClassifyAll_WorkersPreserveOrder(t *testing.T) {
	kb := newFakeKB()
	kb.delay = time.Millisecond
	c := NewClassifier(kb, nil, 4)

	names := []string{"Kheer", "Egg Curry", "kheer", "Dal Makhani", "Butter Chicken", "EGG CURRY", "", "Unknown Thing"}
	labels, err := c.ClassifyAll(context.Background(), names)
	require.NoError(t, err)

	assert.Equal(t, []Label{
		LabelVegetarian, LabelNonVegetarian, LabelVegetarian, LabelVegetarian,
		LabelNonVegetarian, LabelNonVegetarian, LabelUnknown, LabelUnknown,
	}, labels)
	assert.Equal(t, 5, kb.totalResolves())
}

func TestClassifyAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClassifier(newFakeKB(), nil, 1).ClassifyAll(ctx, []string{"Kheer"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify_PausesAfterEveryCall(t *testing.T) {
	var (
		mu     sync.Mutex
		pauses []time.Duration
	)
	pacer := NewPacer(300*time.Millisecond, 700*time.Millisecond, 0)
	pacer.jitter = func(n int64) int64 { return n - 1 }
	pacer.sleep = func(_ context.Context, d time.Duration) {
		mu.Lock()
		pauses = append(pauses, d)
		mu.Unlock()
	}

	kb := newFakeKB()
	kb.failing["broken"] = errors.New("timeout")
	c := NewClassifier(kb, pacer, 1)
	ctx := context.Background()

	c.Classify(ctx, "Kheer")
	assert.Len(t, pauses, 2)

	c.Classify(ctx, "Mystery")
	assert.Len(t, pauses, 3)

	c.Classify(ctx, "Broken")
	assert.Len(t, pauses, 4)

	c.Classify(ctx, "kheer")
	assert.Len(t, pauses, 4)

	for _, d := range pauses {
		assert.Equal(t, 700*time.Millisecond, d)
	}
}

func TestPacerDelayBounds(t *testing.T) {
	p := NewPacer(300*time.Millisecond, 700*time.Millisecond, 0)
	for i := 0; i < 200; i++ {
		d := p.Delay()
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		assert.LessOrEqual(t, d, 700*time.Millisecond)
	}

	p.jitter = func(int64) int64 { return 0 }
	assert.Equal(t, 300*time.Millisecond, p.Delay())

	fixed := NewPacer(time.Second, 0, 0)
	assert.Equal(t, time.Second, fixed.Delay())
}

func TestPacerMinimumSpacing(t *testing.T) {
	p := NewPacer(0, 0, 30*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestPacerPauseStopsOnCancel(t *testing.T) {
	p := NewPacer(time.Hour, time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Pause(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pause ignored cancelled context")
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "palak paneer", NormalizeKey("  Palak Paneer\t"))
	assert.Equal(t, "", NormalizeKey("   "))
}
