package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	schema "github.com/quivergql/quiver/internal/schema"
)

func TestConcurrentSiblings(t *testing.T) {
	t.Run("siblings resolve in parallel", func(t *testing.T) {
		var inFlight, peak int64
		var mu sync.Mutex
		slowField := func(name string) *schema.Field {
			return &schema.Field{
				Name: name,
				Type: schema.NamedType("String"),
				Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
					mu.Lock()
					inFlight++
					if inFlight > peak {
						peak = inFlight
					}
					mu.Unlock()
					time.Sleep(20 * time.Millisecond)
					mu.Lock()
					inFlight--
					mu.Unlock()
					return name, nil
				},
			}
		}

		s := schema.NewSchema("")
		s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
			AddField(slowField("a")).
			AddField(slowField("b")).
			AddField(slowField("c")).
			AddField(slowField("d")))
		s.SetQueryType("Query")

		doc := mustParseQuery(t, `{ a b c d }`)
		start := time.Now()
		res := NewExecutor(s).ExecuteRequest(context.Background(), doc, "", nil, nil)
		elapsed := time.Since(start)

		require.Empty(t, res.Errors)
		require.Equal(t, `{"a":"a","b":"b","c":"c","d":"d"}`, dataJSON(t, res))
		require.Less(t, elapsed, 80*time.Millisecond, "siblings must overlap, not run back to back")
		mu.Lock()
		defer mu.Unlock()
		require.Greater(t, peak, int64(1), "expected overlapping resolver calls")
	})

	t.Run("concurrency cap bounds in-flight resolvers", func(t *testing.T) {
		var inFlight, peak int64
		s := schema.NewSchema("")
		query := schema.NewType("Query", schema.TypeKindObject, "")
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			query.AddField(&schema.Field{
				Name: name,
				Type: schema.NamedType("String"),
				Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
					n := atomic.AddInt64(&inFlight, 1)
					for {
						p := atomic.LoadInt64(&peak)
						if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					atomic.AddInt64(&inFlight, -1)
					return "v", nil
				},
			})
		}
		s.AddType(query)
		s.SetQueryType("Query")

		doc := mustParseQuery(t, `{ a b c d e f }`)
		res := NewExecutor(s, WithMaxConcurrency(2)).ExecuteRequest(context.Background(), doc, "", nil, nil)

		require.Empty(t, res.Errors)
		require.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
	})

	t.Run("cap does not deadlock nested selections", func(t *testing.T) {
		s := schema.NewSchema("")
		s.AddType(schema.NewType("Leaf", schema.TypeKindObject, "").
			AddField(&schema.Field{
				Name: "v",
				Type: schema.NamedType("String"),
				Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
					time.Sleep(time.Millisecond)
					return "v", nil
				},
			}))
		s.AddType(schema.NewType("Mid", schema.TypeKindObject, "").
			AddField(&schema.Field{
				Name: "leaf",
				Type: schema.NamedType("Leaf"),
				Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
					time.Sleep(time.Millisecond)
					return map[string]any{}, nil
				},
			}))
		s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
			AddField(&schema.Field{
				Name: "mid",
				Type: schema.NamedType("Mid"),
				Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
					return map[string]any{}, nil
				},
			}))
		s.SetQueryType("Query")

		doc := mustParseQuery(t, `{ a: mid { leaf { v } } b: mid { leaf { v } } c: mid { leaf { v } } }`)
		done := make(chan *ExecutionResult, 1)
		go func() {
			done <- NewExecutor(s, WithMaxConcurrency(1)).ExecuteRequest(context.Background(), doc, "", nil, nil)
		}()
		select {
		case res := <-done:
			require.Empty(t, res.Errors)
		case <-time.After(5 * time.Second):
			t.Fatal("execution deadlocked under concurrency cap")
		}
	})
}

func TestMutationsRunSerially(t *testing.T) {
	var order []string
	var mu sync.Mutex
	counter := 0

	s := schema.NewSchema("")
	s.AddType(schema.NewType("Mutation", schema.TypeKindObject, "").
		AddField(&schema.Field{
			Name: "first",
			Type: schema.NamedType("Int"),
			Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
				time.Sleep(15 * time.Millisecond) // slower than second on purpose
				mu.Lock()
				defer mu.Unlock()
				order = append(order, "first")
				counter++
				return counter, nil
			},
		}).
		AddField(&schema.Field{
			Name: "second",
			Type: schema.NamedType("Int"),
			Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, "second")
				counter++
				return counter, nil
			},
		}))
	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(&schema.Field{Name: "ok", Type: schema.NamedType("Boolean")}))
	s.SetQueryType("Query").SetMutationType("Mutation")

	doc := mustParseQuery(t, `mutation { first second }`)
	res := NewExecutor(s).ExecuteRequest(context.Background(), doc, "", nil, nil)

	require.Empty(t, res.Errors)
	require.Equal(t, `{"first":1,"second":2}`, dataJSON(t, res))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, order)
}

func TestCancellation(t *testing.T) {
	s := schema.NewSchema("")
	s.AddType(schema.NewType("Query", schema.TypeKindObject, "").
		AddField(&schema.Field{
			Name: "slow",
			Type: schema.NamedType("String"),
			Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
				select {
				case <-ctx.Done():
					return nil, fmt.Errorf("execution aborted: %v", ctx.Err())
				case <-time.After(10 * time.Second):
					return "never", nil
				}
			},
		}))
	s.SetQueryType("Query")

	t.Run("already-canceled context aborts before resolving", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		doc := mustParseQuery(t, `{ slow }`)
		res := NewExecutor(s).ExecuteRequest(ctx, doc, "", nil, nil)

		require.Equal(t, `{"slow":null}`, dataJSON(t, res))
		require.Len(t, res.Errors, 1)
		require.Contains(t, res.Errors[0].Message, "execution aborted")
	})

	t.Run("deadline interrupts long resolvers", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		doc := mustParseQuery(t, `{ slow }`)
		start := time.Now()
		res := NewExecutor(s).ExecuteRequest(ctx, doc, "", nil, nil)

		require.Less(t, time.Since(start), 2*time.Second)
		require.Len(t, res.Errors, 1)
		require.Contains(t, res.Errors[0].Message, "execution aborted")
	})
}
