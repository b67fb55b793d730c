package models

import "time"

type Magazine struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Issue       string    `json:"issue,omitempty"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type Digest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	ArticleIDs  []string  `json:"article_ids,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type Article struct {
	ID          string    `json:"id"`
	MagazineID  string    `json:"magazine_id,omitempty"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Body        string    `json:"body,omitempty"`
	ReadMinutes int       `json:"read_minutes,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ArticleQuery filters the article listing. Zero values are omitted.
type ArticleQuery struct {
	MagazineID string
	DigestID   string
	Page       int
	Limit      int
}

// Page wraps list responses from the reader service.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
