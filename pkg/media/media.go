// Package media models stored images and validates uploaded image files.
package media

import (
	"strings"
)

// Kind tells where an image lives.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Placeholder images used when a resource has no upload of its own.
const (
	ProjectCoverPlaceholder         = "https://placehold.co/1920x1080?text=Capa+Projeto"
	PublicationCoverPlaceholder     = "https://placehold.co/1920x1080?text=Publicacao+Capa"
	PublicationThumbnailPlaceholder = "https://placehold.co/640x360?text=Publicacao+Thumbnail"
)

// ImageRef points at a stored image. Local locations are paths relative to
// the upload root; remote locations are absolute URLs.
type ImageRef struct {
	Kind     Kind   `gorm:"column:kind;type:varchar(10);not null;default:remote"`
	Location string `gorm:"column:location;type:text;not null;default:''"`
}

// Local references a file under the upload root.
func Local(path string) ImageRef {
	return ImageRef{Kind: KindLocal, Location: strings.TrimPrefix(path, "/")}
}

// Remote references an absolute URL.
func Remote(url string) ImageRef {
	return ImageRef{Kind: KindRemote, Location: url}
}

// IsZero reports whether the reference is unset.
func (r ImageRef) IsZero() bool {
	return r.Location == ""
}

// Resolved is the public form of an ImageRef.
type Resolved struct {
	Kind Kind   `json:"kind"`
	URL  string `json:"url"`
}

// Resolver turns stored references into URLs clients can fetch.
type Resolver struct {
	publicBaseURL string
}

func NewResolver(publicBaseURL string) Resolver {
	return Resolver{publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Resolve returns nil for an unset reference.
func (r Resolver) Resolve(ref ImageRef) *Resolved {
	if ref.IsZero() {
		return nil
	}
	if ref.Kind == KindLocal {
		return &Resolved{Kind: KindLocal, URL: r.publicBaseURL + "/" + ref.Location}
	}
	return &Resolved{Kind: KindRemote, URL: ref.Location}
}
