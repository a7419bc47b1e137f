package flatpak

// Source types understood by flatpak-builder.
const (
	TypeArchive = "archive"
	TypeGit     = "git"
	TypeInline  = "inline"
)

// ArchiveTarGzip is the archive-type of a .crate file.
const ArchiveTarGzip = "tar-gzip"

// Source is a flatpak-builder source entry. Field order matches the
// order keys are written in.
type Source struct {
	Type         string `json:"type"`
	ArchiveType  string `json:"archive-type,omitempty"`
	URL          string `json:"url,omitempty"`
	SHA256       string `json:"sha256,omitempty"`
	Commit       string `json:"commit,omitempty"`
	Contents     string `json:"contents,omitempty"`
	Dest         string `json:"dest,omitempty"`
	DestFilename string `json:"dest-filename,omitempty"`
}

// Archive returns an archive source extracted into dest.
func Archive(url, sha256, dest string) Source {
	return Source{
		Type:        TypeArchive,
		ArchiveType: ArchiveTarGzip,
		URL:         url,
		SHA256:      sha256,
		Dest:        dest,
	}
}

// Git returns a git source checked out at commit into dest.
func Git(url, commit, dest string) Source {
	return Source{Type: TypeGit, URL: url, Commit: commit, Dest: dest}
}

// Inline returns a source that writes contents to dest/filename.
func Inline(contents, dest, filename string) Source {
	return Source{Type: TypeInline, Contents: contents, Dest: dest, DestFilename: filename}
}
