package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quivergql/quiver/internal/schema"
)

// The demo schema is a small in-memory message board, enough to exercise
// queries, mutations, arguments, lists and interface resolution from
// GraphiQL.
const demoSDL = `
"A small in-memory message board."
type Query {
  "Fetch a single author by id."
  author(id: ID!): Author
  "All authors, ordered by id."
  authors: [Author!]!
  "Fetch a single post by id."
  post(id: ID!): Post
  "Recent posts, newest first."
  posts(limit: Int = 10): [Post!]!
  node(id: ID!): Node
}

type Mutation {
  "Publish a new post and return it."
  createPost(input: CreatePostInput!): Post!
}

interface Node {
  id: ID!
}

type Author implements Node {
  id: ID!
  name: String!
  posts: [Post!]!
}

type Post implements Node {
  id: ID!
  title: String!
  body: String
  author: Author!
}

input CreatePostInput {
  authorId: ID!
  title: String!
  body: String
}
`

type demoAuthor struct {
	ID   string
	Name string
}

type demoPost struct {
	ID       string
	Title    string
	Body     *string
	AuthorID string
}

// demoStore holds the board data. Mutations run serially per request but
// requests overlap, so access stays behind a mutex.
type demoStore struct {
	mu      sync.Mutex
	authors map[string]*demoAuthor
	posts   map[string]*demoPost
	nextID  int
}

func newDemoStore() *demoStore {
	body := "Queries run their sibling fields concurrently."
	return &demoStore{
		authors: map[string]*demoAuthor{
			"a1": {ID: "a1", Name: "Ada"},
			"a2": {ID: "a2", Name: "Brendan"},
		},
		posts: map[string]*demoPost{
			"p1": {ID: "p1", Title: "Hello, board", AuthorID: "a1"},
			"p2": {ID: "p2", Title: "On resolvers", Body: &body, AuthorID: "a2"},
		},
		nextID: 3,
	}
}

func (d *demoStore) author(id string) *demoAuthor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.authors[id]
}

func (d *demoStore) post(id string) *demoPost {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.posts[id]
}

func (d *demoStore) allAuthors() []*demoAuthor {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*demoAuthor, 0, len(d.authors))
	for _, a := range d.authors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *demoStore) recentPosts(limit int) []*demoPost {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*demoPost, 0, len(d.posts))
	for _, p := range d.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (d *demoStore) postsByAuthor(authorID string) []*demoPost {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*demoPost, 0)
	for _, p := range d.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *demoStore) createPost(authorID, title string, body *string) (*demoPost, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.authors[authorID]; !ok {
		return nil, fmt.Errorf("author %q does not exist", authorID)
	}
	p := &demoPost{
		ID:       fmt.Sprintf("p%d", d.nextID),
		Title:    title,
		Body:     body,
		AuthorID: authorID,
	}
	d.nextID++
	d.posts[p.ID] = p
	return p, nil
}

func demoSchema() (*schema.Schema, error) {
	store := newDemoStore()

	return schema.Build(demoSDL,
		schema.WithResolver("Query.author", func(ctx context.Context, src any, args map[string]any) (any, error) {
			return orNil(store.author(args["id"].(string))), nil
		}),
		schema.WithResolver("Query.authors", func(ctx context.Context, src any, args map[string]any) (any, error) {
			return store.allAuthors(), nil
		}),
		schema.WithResolver("Query.post", func(ctx context.Context, src any, args map[string]any) (any, error) {
			return orNil(store.post(args["id"].(string))), nil
		}),
		schema.WithResolver("Query.posts", func(ctx context.Context, src any, args map[string]any) (any, error) {
			limit, _ := args["limit"].(int)
			return store.recentPosts(limit), nil
		}),
		schema.WithResolver("Query.node", func(ctx context.Context, src any, args map[string]any) (any, error) {
			id := args["id"].(string)
			if a := store.author(id); a != nil {
				return a, nil
			}
			return orNil(store.post(id)), nil
		}),
		schema.WithResolver("Mutation.createPost", func(ctx context.Context, src any, args map[string]any) (any, error) {
			input := args["input"].(map[string]any)
			var body *string
			if b, ok := input["body"].(string); ok {
				body = &b
			}
			return store.createPost(input["authorId"].(string), input["title"].(string), body)
		}),
		schema.WithResolver("Author.posts", func(ctx context.Context, src any, args map[string]any) (any, error) {
			return store.postsByAuthor(src.(*demoAuthor).ID), nil
		}),
		schema.WithResolver("Post.author", func(ctx context.Context, src any, args map[string]any) (any, error) {
			return store.author(src.(*demoPost).AuthorID), nil
		}),
		schema.WithTypeResolver("Node", func(ctx context.Context, value any) (string, error) {
			switch value.(type) {
			case *demoAuthor:
				return "Author", nil
			case *demoPost:
				return "Post", nil
			}
			return "", fmt.Errorf("unknown node value %T", value)
		}),
	)
}

// orNil turns a typed nil pointer into an untyped nil so nullable fields
// serialize as null.
func orNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}
