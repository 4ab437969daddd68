package activitypub

import (
	"html"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/davecheney/linkpub/internal/activitypub"
	"github.com/davecheney/linkpub/internal/algorithms"
	"github.com/davecheney/linkpub/internal/links"
	"github.com/davecheney/linkpub/internal/webfinger"
)

// Composer turns links into ActivityStreams documents. It is stateless.
type Composer struct {
	acct    *webfinger.Acct
	siteURL string
}

// NewComposer returns a Composer whose notes are attributed to identity
// and whose hashtags point at siteURL.
func NewComposer(identity *Identity, siteURL string) *Composer {
	return &Composer{
		acct:    identity.Acct(),
		siteURL: siteURL,
	}
}

// LinkToNote renders a link as a public Note. All link derived text is
// HTML escaped before it is placed in the content.
func (c *Composer) LinkToNote(link *links.Link) *activitypub.Note {
	tags := algorithms.Filter(algorithms.Map(link.Tags, normaliseTag), func(tag string) bool { return tag != "" })
	note := &activitypub.Note{
		ID:           c.acct.Note(link.ID),
		Type:         "Note",
		AttributedTo: c.acct.ID(),
		Published:    link.Timestamp.UTC(),
		Content:      c.content(link, tags),
		To:           []string{activitypub.Public},
		CC:           []string{c.acct.Followers()},
		Tag: algorithms.Map(tags, func(tag string) activitypub.Hashtag {
			return activitypub.Hashtag{
				Type: "Hashtag",
				Href: c.tagURL(tag),
				Name: "#" + tag,
			}
		}),
	}
	if link.URL != "" {
		note.Attachment = []activitypub.Link{{
			Type:      "Link",
			Href:      link.URL,
			MediaType: "text/html",
			Name:      link.Title,
		}}
	}
	return note
}

func (c *Composer) content(link *links.Link, tags []string) string {
	var sb strings.Builder
	title := link.Title
	if title == "" {
		title = link.URL
	}
	sb.WriteString("<p>")
	if link.URL != "" {
		sb.WriteString(`<a href="` + html.EscapeString(link.URL) + `" rel="nofollow noopener noreferrer" target="_blank">`)
		sb.WriteString(html.EscapeString(title))
		sb.WriteString("</a>")
	} else {
		sb.WriteString(html.EscapeString(title))
	}
	sb.WriteString("</p>")
	if link.Excerpt != "" {
		sb.WriteString("<blockquote><p>" + html.EscapeString(link.Excerpt) + "</p></blockquote>")
	}
	if len(tags) > 0 {
		hashtags := algorithms.Map(tags, func(tag string) string {
			return `<a href="` + html.EscapeString(c.tagURL(tag)) + `" class="mention hashtag" rel="tag">#<span>` + html.EscapeString(tag) + `</span></a>`
		})
		sb.WriteString("<p>" + strings.Join(hashtags, " ") + "</p>")
	}
	return sb.String()
}

func (c *Composer) tagURL(tag string) string {
	return c.siteURL + "?tag=" + url.QueryEscape(tag)
}

// normaliseTag strips a leading # and any whitespace from tag.
func normaliseTag(tag string) string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	return strings.Join(strings.Fields(tag), "")
}

// WrapInCreate wraps note in a Create activity. The activity id is derived
// from the last path segment of the note id so repeated calls agree.
func (c *Composer) WrapInCreate(note *activitypub.Note) *activitypub.Activity {
	seg := note.ID[strings.LastIndex(note.ID, "/")+1:]
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	return &activitypub.Activity{
		Context:   activitypub.ActivityStreams,
		ID:        c.acct.Activity("create-" + seg),
		Type:      "Create",
		Actor:     c.acct.ID(),
		Published: note.Published.Format(time.RFC3339),
		To:        note.To,
		CC:        note.CC,
		Object:    note,
	}
}

// OutboxSummary returns the summary of the outbox.
func (c *Composer) OutboxSummary(total, perPage int) *activitypub.OrderedCollection {
	return collectionSummary(c.acct.Outbox(), total, perPage)
}

// OutboxPage returns page n, counting from 1, of the outbox. Links are
// ordered newest first; links with equal timestamps keep their order.
func (c *Composer) OutboxPage(all []*links.Link, n, perPage int) *activitypub.OrderedCollectionPage {
	sorted := make([]*links.Link, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	items := algorithms.Map(paginate(sorted, n, perPage), func(link *links.Link) any {
		return c.WrapInCreate(c.LinkToNote(link))
	})
	return collectionPage(c.acct.Outbox(), items, len(sorted), n, perPage)
}

// Outbox returns the summary of the outbox when page is nil, otherwise the
// requested page.
func (c *Composer) Outbox(all []*links.Link, page *int, perPage int) any {
	if page == nil {
		return c.OutboxSummary(len(all), perPage)
	}
	return c.OutboxPage(all, *page, perPage)
}

// collectionSummary returns an OrderedCollection that links to the first
// and last pages of the collection at id.
func collectionSummary(id string, total, perPage int) *activitypub.OrderedCollection {
	return &activitypub.OrderedCollection{
		Context:    activitypub.ActivityStreams,
		ID:         id,
		Type:       "OrderedCollection",
		TotalItems: total,
		First:      pageURL(id, 1),
		Last:       pageURL(id, lastPage(total, perPage)),
	}
}

// collectionPage returns page n of the collection at id. prev is present
// for every page after the first, next only while items remain.
func collectionPage(id string, items []any, total, n, perPage int) *activitypub.OrderedCollectionPage {
	page := &activitypub.OrderedCollectionPage{
		Context:      activitypub.ActivityStreams,
		ID:           pageURL(id, n),
		Type:         "OrderedCollectionPage",
		PartOf:       id,
		TotalItems:   total,
		OrderedItems: items,
	}
	if n > 1 {
		page.Prev = pageURL(id, n-1)
	}
	if n < lastPage(total, perPage) {
		page.Next = pageURL(id, n+1)
	}
	return page
}

func pageURL(id string, n int) string {
	return id + "?page=" + strconv.Itoa(n)
}

func lastPage(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// paginate returns page n, counting from 1, of s. Pages past the end are
// empty.
func paginate[T any](s []T, n, perPage int) []T {
	if n < 1 || perPage <= 0 || n > lastPage(len(s), perPage) {
		return []T{}
	}
	start := (n - 1) * perPage
	if start >= len(s) {
		return []T{}
	}
	end := start + perPage
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
