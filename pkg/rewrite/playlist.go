package rewrite

import (
	"encoding/xml"
	"io"
)

// PlaylistFileName is where the playlist manifest is written, relative to
// the working directory.
const PlaylistFileName = "UpdatedTests.playlist"

// Playlist is the manifest consumed by test-runner UIs: one Class property
// per test class whose baselines were touched.
type Playlist struct {
	XMLName xml.Name     `xml:"Playlist"`
	Version string       `xml:"Version,attr"`
	Rule    PlaylistRule `xml:"Rule"`
}

// PlaylistRule matches any of its properties.
type PlaylistRule struct {
	Match      string             `xml:"Match,attr"`
	Properties []PlaylistProperty `xml:"Property"`
}

// PlaylistProperty names one matched test class.
type PlaylistProperty struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value,attr"`
}

// WritePlaylist emits the playlist XML listing each touched test class, in
// the order the classes were first seen.
func WritePlaylist(w io.Writer, classes []string) error {
	playlist := Playlist{Version: "2.0", Rule: PlaylistRule{Match: "Any"}}
	for _, class := range classes {
		playlist.Rule.Properties = append(playlist.Rule.Properties, PlaylistProperty{
			Name:  "Class",
			Value: class,
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(playlist); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
