package fetch

import (
	"net/url"
	"path"
	"strings"
)

// downloadableExts are extensions that a plain click should download rather
// than render.
var downloadableExts = map[string]bool{
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".iso": true, ".img": true,
	".deb": true, ".rpm": true, ".apk": true, ".dmg": true, ".exe": true,
	".msi": true, ".bin": true, ".appimage": true,
	".pdf": true, ".epub": true, ".mobi": true,
	".mp3": true, ".flac": true, ".ogg": true, ".wav": true,
	".mp4": true, ".mkv": true, ".webm": true, ".avi": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".odt": true, ".ods": true, ".csv": true,
	".sig": true, ".asc": true, ".torrent": true,
}

// Downloadable reports whether the URL's path ends in a file extension that
// should be saved rather than rendered.
func Downloadable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return downloadableExts[strings.ToLower(path.Ext(u.Path))]
}

// Filename derives a safe local filename from a URL. Path separators and
// traversal components never survive; an empty result falls back to
// "download".
func Filename(rawURL string) string {
	name := "download"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}

	// path.Base already strips directories; scrub what remains.
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")

	if name == "" {
		name = "download"
	}
	return name
}
