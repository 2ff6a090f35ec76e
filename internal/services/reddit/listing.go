package reddit

// listing mirrors the parts of a Reddit listing response the client reads.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string `json:"kind"`
	Data post   `json:"data"`
}

type post struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Score      int     `json:"score"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
}

// usable reports whether the post carries narratable text.
func (p post) usable() bool {
	if p.Stickied {
		return false
	}
	switch p.Selftext {
	case "", "[deleted]", "[removed]":
		return false
	}
	return true
}
