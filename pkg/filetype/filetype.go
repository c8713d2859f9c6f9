// Package filetype classifies uploaded files into the buckets shown on the
// dashboard and formats byte sizes for display
package filetype

import (
	"fmt"
	"strings"
)

type Type string

const (
	Document Type = "document"
	Image    Type = "image"
	Video    Type = "video"
	Audio    Type = "audio"
	Other    Type = "other"
)

// Types lists every bucket in display order
var Types = []Type{Document, Image, Video, Audio, Other}

var extensions = []struct {
	t    Type
	exts []string
}{
	{Document, []string{
		"pdf", "doc", "docx", "txt", "xls", "xlsx", "csv", "rtf", "ods", "ppt", "odp", "md",
		"html", "htm", "epub", "pages", "fig", "psd", "ai", "indd", "xd", "sketch",
		"afdesign", "afphoto",
	}},
	{Image, []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"}},
	{Video, []string{"mp4", "avi", "mov", "mkv", "webm"}},
	{Audio, []string{"mp3", "wav", "ogg", "flac"}},
}

var lookup map[string]Type

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}

	lookup = make(map[string]Type)
	for _, set := range extensions {
		for _, e := range set.exts {
			lookup[e] = set.t
		}
	}
}

// Validate makes sure no extension is listed twice. A duplicate across two
// sets would make the classification depend on the order of the tables.
func Validate() error {
	seen := make(map[string]Type)

	for _, set := range extensions {
		for _, e := range set.exts {
			if prev, ok := seen[e]; ok {
				return fmt.Errorf("extension %q listed for both %s and %s", e, prev, set.t)
			}

			seen[e] = set.t
		}
	}

	return nil
}

// Classify returns the type bucket and the lower-cased extension of a file name.
// Names without a dot or with a trailing dot have no extension and are "other".
func Classify(name string) (Type, string) {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return Other, ""
	}

	ext := strings.ToLower(name[i+1:])

	if t, ok := lookup[ext]; ok {
		return t, ext
	}

	return Other, ext
}

// Valid reports whether t is one of the known buckets
func Valid(t Type) bool {
	switch t {
	case Document, Image, Video, Audio, Other:
		return true
	}

	return false
}

// TypesForCategory maps a category route (documents, images, media, others)
// to the buckets it lists. Unknown routes fall back to documents.
func TypesForCategory(category string) []Type {
	switch category {
	case "documents":
		return []Type{Document}
	case "images":
		return []Type{Image}
	case "media":
		return []Type{Video, Audio}
	case "others":
		return []Type{Other}
	default:
		return []Type{Document}
	}
}
