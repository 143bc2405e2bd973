// Copyright (c) 2026 101 Teams
// SPDX-License-Identifier: GPL-3.0-or-later

package media

// Format is a resized variant of an uploaded image.
type Format struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Mime   string `json:"mime,omitempty"`
}

// Formats holds the variants generated by the CMS upload plugin.
type Formats struct {
	Small     *Format `json:"small,omitempty"`
	Medium    *Format `json:"medium,omitempty"`
	Thumbnail *Format `json:"thumbnail,omitempty"`
}

// Item describes one attached image or video.
type Item struct {
	ID              int64    `json:"id"`
	URL             string   `json:"url"`
	Mime            string   `json:"mime,omitempty"`
	Name            string   `json:"name,omitempty"`
	Ext             string   `json:"ext,omitempty"`
	AlternativeText string   `json:"alternativeText,omitempty"`
	Caption         string   `json:"caption,omitempty"`
	Width           int      `json:"width,omitempty"`
	Height          int      `json:"height,omitempty"`
	Size            float64  `json:"size,omitempty"`
	Formats         *Formats `json:"formats,omitempty"`
	PreviewURL      string   `json:"previewUrl,omitempty"`
	Provider        string   `json:"provider,omitempty"`
}

// Kind classifies the item from its MIME type.
func (i Item) Kind() Kind {
	return Classify(i.Mime)
}

// IsImage reports whether the item renders as an image.
func (i Item) IsImage() bool { return i.Kind() == KindImage }

// IsVideo reports whether the item renders as a video.
func (i Item) IsVideo() bool { return i.Kind() == KindVideo }

// URLFor returns the absolute URL of the item against origin.
func (i Item) URLFor(origin string) string {
	return Resolve(i.URL, origin)
}

// FormatURL returns the absolute URL of a named variant ("small", "medium",
// "thumbnail"), falling back to the original upload.
func (i Item) FormatURL(name, origin string) string {
	if i.Formats != nil {
		var f *Format
		switch name {
		case "small":
			f = i.Formats.Small
		case "medium":
			f = i.Formats.Medium
		case "thumbnail":
			f = i.Formats.Thumbnail
		}
		if f != nil && f.URL != "" {
			return Resolve(f.URL, origin)
		}
	}
	return i.URLFor(origin)
}

// Alt returns the alternative text, or fallback when none was provided.
func (i Item) Alt(fallback string) string {
	if i.AlternativeText != "" {
		return i.AlternativeText
	}
	if fallback != "" {
		return fallback
	}
	return i.Name
}

// Hero returns the designated hero asset (the first item) if any.
func Hero(items []Item) (Item, bool) {
	if len(items) == 0 {
		return Item{}, false
	}
	return items[0], true
}

// Count returns the number of image and video items. Unknown kinds are ignored.
func Count(items []Item) (images, videos int) {
	for _, it := range items {
		switch it.Kind() {
		case KindImage:
			images++
		case KindVideo:
			videos++
		}
	}
	return images, videos
}

// Renderable returns the image and video items of items in order.
func Renderable(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Kind() != KindUnknown {
			out = append(out, it)
		}
	}
	return out
}
