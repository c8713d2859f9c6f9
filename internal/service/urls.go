package service

import (
	"net/url"
	"strings"
)

// URLBuilder builds the public view and download links of stored objects
type URLBuilder struct {
	Endpoint string
	Bucket   string
	Project  string
}

func (b *URLBuilder) build(objectID, action string) string {
	return strings.TrimRight(b.Endpoint, "/") +
		"/storage/buckets/" + url.PathEscape(b.Bucket) +
		"/files/" + url.PathEscape(objectID) +
		"/" + action + "?project=" + url.QueryEscape(b.Project)
}

// View returns the inline view link of an object
func (b *URLBuilder) View(objectID string) string {
	return b.build(objectID, "view")
}

// Download returns the attachment link of an object
func (b *URLBuilder) Download(objectID string) string {
	return b.build(objectID, "download")
}
