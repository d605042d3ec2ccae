package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"tweet_curator/models"
)

// Thresholds a scraped tweet must meet to enter the dataset.
const (
	MinTextLength = 30
	MinLikes      = 10
)

var ErrMalformedRaw = errors.New("malformed raw tweet dump")

// UserTags maps a tracked account to the tags shown next to its tweets.
type UserTags map[string][]string

// LoadUserTags reads the data config: {"twitter":{"users":{"<name>":{"tags":[...]}}}}.
func LoadUserTags(path string) (UserTags, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data config: %w", err)
	}
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("data config %s: invalid JSON", path)
	}
	tags := UserTags{}
	gjson.GetBytes(b, "twitter.users").ForEach(func(user, cfg gjson.Result) bool {
		list := []string{}
		cfg.Get("tags").ForEach(func(_, t gjson.Result) bool {
			list = append(list, t.String())
			return true
		})
		tags[user.String()] = list
		return true
	})
	return tags, nil
}

// Process turns a raw dump of scraped tweets,
// {"twitter":{"users":{"<name>":{"<tweetID>":{...}}}}}, into dataset items.
// Tweets shorter than MinTextLength characters or with fewer than MinLikes
// likes are dropped. Items keep the dump's user and tweet order.
func Process(raw []byte, users UserTags) ([]models.Item, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedRaw)
	}
	byUser := gjson.GetBytes(raw, "twitter.users")
	if !byUser.IsObject() {
		return nil, fmt.Errorf("%w: missing twitter.users", ErrMalformedRaw)
	}

	items := []models.Item{}
	byUser.ForEach(func(user, tweets gjson.Result) bool {
		name := user.String()
		tags := users[name]
		if tags == nil {
			tags = []string{}
		}
		tweets.ForEach(func(id, tw gjson.Result) bool {
			text := tw.Get("rawContent").String()
			likes := int(tw.Get("likeCount").Int())
			if utf8.RuneCountInString(text) < MinTextLength || likes < MinLikes {
				return true
			}
			it := models.Item{
				ID:           name + "-" + id.String(),
				Author:       name,
				Text:         text,
				Likes:        likes,
				Date:         tw.Get("date").String(),
				ProfileImage: tw.Get("user.profileImageUrl").String(),
				URL:          tw.Get("url").String(),
				UserTags:     tags,
			}
			normalize(&it)
			items = append(items, it)
			return true
		})
		return true
	})
	return items, nil
}

// ProcessFile runs Process over the dump at in and writes the dataset to out.
// It returns the number of items written.
func ProcessFile(in, dataConfig, out string) (int, error) {
	raw, err := os.ReadFile(in)
	if err != nil {
		return 0, fmt.Errorf("read raw tweets: %w", err)
	}
	users, err := LoadUserTags(dataConfig)
	if err != nil {
		return 0, err
	}
	items, err := Process(raw, users)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", in, err)
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return 0, fmt.Errorf("write dataset: %w", err)
	}
	return len(items), nil
}
