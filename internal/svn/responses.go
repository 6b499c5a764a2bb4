package svn

import (
	"encoding/xml"
	"strings"
	"time"
)

const (
	nodeKindDirectoryConstant = "dir"
	nodeKindFileConstant      = "file"
	diffItemDeletedConstant   = "deleted"
)

type listResponse struct {
	XMLName xml.Name       `xml:"lists"`
	Lists   []listDocument `xml:"list"`
}

type listDocument struct {
	Path    string      `xml:"path,attr"`
	Entries []listEntry `xml:"entry"`
}

type listEntry struct {
	Kind   string      `xml:"kind,attr"`
	Name   string      `xml:"name"`
	Commit commitEntry `xml:"commit"`
}

type commitEntry struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
}

type logResponse struct {
	XMLName xml.Name   `xml:"log"`
	Entries []logEntry `xml:"logentry"`
}

type logEntry struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
}

type infoResponse struct {
	XMLName xml.Name    `xml:"info"`
	Entries []infoEntry `xml:"entry"`
}

type infoEntry struct {
	Kind     string      `xml:"kind,attr"`
	Revision int64       `xml:"revision,attr"`
	URL      string      `xml:"url"`
	Commit   commitEntry `xml:"commit"`
}

type diffResponse struct {
	XMLName xml.Name   `xml:"diff"`
	Paths   []diffPath `xml:"paths>path"`
}

type diffPath struct {
	Item  string `xml:"item,attr"`
	Props string `xml:"props,attr"`
	Kind  string `xml:"kind,attr"`
	URL   string `xml:",chardata"`
}

func decodeResponse(operation string, payload string, target any) error {
	if decodeError := xml.Unmarshal([]byte(payload), target); decodeError != nil {
		return &ResponseDecodingError{Operation: operation, Cause: decodeError}
	}
	return nil
}

// parseCommitTime accepts the microsecond timestamps svn emits; an empty date yields the zero time.
func parseCommitTime(operation string, value string) (time.Time, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return time.Time{}, nil
	}
	parsedTime, parseError := time.Parse(time.RFC3339Nano, trimmedValue)
	if parseError != nil {
		return time.Time{}, &ResponseDecodingError{Operation: operation, Cause: parseError}
	}
	return parsedTime, nil
}
