package models

// Link is a single slug-to-destination row from the link directory.
type Link struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}
