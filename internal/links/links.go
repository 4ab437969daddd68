// Package links provides read only access to the curated link list.
package links

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-json-experiment/json"
)

// ErrNotFound is returned when a link does not exist.
var ErrNotFound = errors.New("link not found")

// Link is a single entry in the link list.
type Link struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Pinned    bool      `json:"pinned,omitempty"`
	Visits    int       `json:"visits,omitempty"`
}

// Repository is the ordered collection of links. Federation only reads it.
type Repository interface {
	All(ctx context.Context) ([]*Link, error)
	Find(ctx context.Context, id string) (*Link, error)
}

// File is a Repository backed by a JSON array on disk. The file is owned
// by the publishing scripts, so it is re-read on every call.
type File struct {
	Path string
}

// NewFile returns a Repository reading from path.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) All(ctx context.Context) ([]*Link, error) {
	r, err := os.Open(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("links: %w", err)
	}
	defer r.Close()

	var links []*Link
	if err := json.UnmarshalFull(r, &links); err != nil {
		return nil, fmt.Errorf("links: %s: %w", f.Path, err)
	}
	return links, nil
}

func (f *File) Find(ctx context.Context, id string) (*Link, error) {
	links, err := f.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, ErrNotFound
}

// Static is an in memory Repository.
type Static []*Link

func (s Static) All(context.Context) ([]*Link, error) {
	return s, nil
}

func (s Static) Find(_ context.Context, id string) (*Link, error) {
	for _, l := range s {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, ErrNotFound
}
