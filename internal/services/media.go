package services

import (
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/util"
)

// MediaURLs builds public links for stored file paths.
type MediaURLs struct {
	Blog      string
	Photos    string
	Magazines string
}

func MediaURLsFromConfig(cfg *config.Config) MediaURLs {
	return MediaURLs{
		Blog:      cfg.MediaBlogBaseURL,
		Photos:    cfg.MediaPhotosBaseURL,
		Magazines: cfg.MediaMagazinesBaseURL,
	}
}

func (m MediaURLs) blog(path string) string {
	return util.PublicURL(m.Blog, path)
}

func (m MediaURLs) photo(path string) string {
	return util.PublicURL(m.Photos, path)
}

func (m MediaURLs) magazine(path string) string {
	return util.PublicURL(m.Magazines, path)
}
