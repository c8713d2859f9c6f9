package model

import "io"

// Object is a blob read back from the object store. Body must be closed.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}
