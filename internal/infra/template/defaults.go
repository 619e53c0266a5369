package template

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embedded embed.FS

// Defaults returns the templates compiled into the binary.
func Defaults() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory exists
	}
	return sub
}
