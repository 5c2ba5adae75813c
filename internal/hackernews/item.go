package hackernews

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/hn-matcher/internal/record"
)

type Items []*Item

// Item is a Hacker News API item. Only fields used for post extraction are kept.
type Item struct {
	ID      int    `json:"id"`
	By      string `json:"by,omitempty"`
	Time    int64  `json:"time,omitempty"`
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text,omitempty"`
	Parent  int    `json:"parent,omitempty"`
	Kids    []int  `json:"kids,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
	Dead    bool   `json:"dead,omitempty"`
}

// Usable reports whether the item carries post text worth extracting.
func (i *Item) Usable() bool {
	return i != nil && !i.Deleted && !i.Dead && strings.TrimSpace(i.Text) != ""
}

// ToPost converts the item into a post of the given thread. A zero threadID
// falls back to the item's parent.
func (i *Item) ToPost(threadID int) *record.Post {
	if threadID == 0 {
		threadID = i.Parent
	}

	post := &record.Post{
		ID:       i.ID,
		ThreadID: threadID,
		Author:   i.By,
		Text:     i.Text,
	}
	if i.Time > 0 {
		post.Time = time.Unix(i.Time, 0).UTC()
	}
	return post
}

// ToPosts converts usable items into posts keeping their order.
func (items Items) ToPosts(threadID int) []*record.Post {
	posts := make([]*record.Post, 0, len(items))
	for _, item := range items {
		if !item.Usable() {
			continue
		}
		posts = append(posts, item.ToPost(threadID))
	}
	return posts
}

// ReadItemsFromFile loads a JSON array of items, as produced by the API, from path.
func ReadItemsFromFile(path string) (Items, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading items file %s: %w", path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing items file %s: %w", path, err)
	}

	items := make(Items, 0, len(raw))
	for n, entry := range raw {
		item, err := decodeItem(entry)
		if err != nil {
			return nil, fmt.Errorf("items file %s, entry %d: %w", path, n, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(raw map[string]any) (*Item, error) {
	var item Item
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &item,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}
	return &item, nil
}
