package content

import (
	"math"
	"strings"

	"reelpipe/internal/textutil"
)

// WordsPerMinute is the narration pace used for reading-time estimates.
const WordsPerMinute = 200

// Item is one unit of acquired text content.
type Item struct {
	ID                 string  `json:"id"`
	Subreddit          string  `json:"subreddit"`
	Title              string  `json:"title"`
	Content            string  `json:"content"`
	FullText           string  `json:"full_text"`
	Author             string  `json:"author"`
	Score              int     `json:"score"`
	URL                string  `json:"url"`
	CreatedUTC         float64 `json:"created_utc"`
	ReadingTimeSeconds float64 `json:"reading_time_seconds"`
}

// Post is raw listing data before cleaning.
type Post struct {
	ID         string
	Subreddit  string
	Title      string
	Body       string
	Author     string
	Score      int
	Permalink  string
	CreatedUTC float64
}

// NewItem cleans a post's title and body, joins them into the narration
// text, and estimates its reading time.
func NewItem(p Post) Item {
	title := textutil.CleanText(p.Title)
	body := textutil.CleanText(p.Body)
	full := textutil.JoinTitle(title, body)
	author := strings.TrimSpace(p.Author)
	if author == "" {
		author = "Unknown"
	}
	url := p.Permalink
	if strings.HasPrefix(url, "/") {
		url = "https://reddit.com" + url
	}
	return Item{
		ID:                 p.ID,
		Subreddit:          p.Subreddit,
		Title:              title,
		Content:            body,
		FullText:           full,
		Author:             author,
		Score:              p.Score,
		URL:                url,
		CreatedUTC:         p.CreatedUTC,
		ReadingTimeSeconds: ReadingTime(full),
	}
}

// Text returns the narration text for the item.
func (i Item) Text() string {
	if strings.TrimSpace(i.FullText) != "" {
		return i.FullText
	}
	return textutil.JoinTitle(i.Title, i.Content)
}

// Key identifies the item for duplicate detection. Items without an id fall
// back to their subreddit and narration text.
func (i Item) Key() string {
	if i.ID != "" {
		return i.Subreddit + "/" + i.ID
	}
	return i.Subreddit + "/" + i.Text()
}

// ReadingTime estimates seconds needed to read text aloud at WordsPerMinute,
// rounded to a tenth of a second.
func ReadingTime(text string) float64 {
	words := textutil.WordCount(text)
	seconds := float64(words) / WordsPerMinute * 60
	return math.Round(seconds*10) / 10
}

// WithReadingTime returns the item with its reading time estimated when absent.
func (i Item) WithReadingTime() Item {
	if i.ReadingTimeSeconds <= 0 {
		i.ReadingTimeSeconds = ReadingTime(i.Text())
	}
	return i
}
