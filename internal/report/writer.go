package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/temirov/svntools/internal/mergeinfo"
	"github.com/temirov/svntools/internal/mergestate"
)

// Format selects the report encoding.
type Format string

// Supported report formats.
const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

const (
	unsupportedFormatTemplateConstant = "unsupported report format %q (expected text, yaml, json or toml)"
	encodeFailureTemplateConstant     = "encode %s report: %w"
	writeFailureTemplateConstant      = "write report: %w"
	driftLineTemplateConstant         = "%s r%d\n"
	lineTerminatorConstant            = "\n"
	jsonIndentConstant                = "  "
)

// UnsupportedFormatError reports an unknown format name.
type UnsupportedFormatError struct {
	Value string
}

// Error describes the unknown format.
func (formatError UnsupportedFormatError) Error() string {
	return fmt.Sprintf(unsupportedFormatTemplateConstant, formatError.Value)
}

// SupportedFormats lists the format names in help order, text first.
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatYAML), string(FormatJSON), string(FormatTOML)}
}

// ParseFormat resolves a format name case-insensitively; an empty name selects text.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return FormatText, nil
	case FormatText, FormatYAML, FormatJSON, FormatTOML:
		return normalized, nil
	default:
		return "", UnsupportedFormatError{Value: value}
	}
}

// BranchEntry is the serialized form of a classified branch.
type BranchEntry struct {
	Name       string    `json:"name" yaml:"name" toml:"name"`
	Author     string    `json:"author" yaml:"author" toml:"author"`
	Revision   int64     `json:"revision" yaml:"revision" toml:"revision"`
	LastCommit time.Time `json:"last_commit" yaml:"last_commit" toml:"last_commit"`
	Summary    string    `json:"summary" yaml:"summary" toml:"summary"`
}

// DriftEntry is the serialized form of a branch whose merge info advanced.
type DriftEntry struct {
	Branch       string `json:"branch" yaml:"branch" toml:"branch"`
	LastRevision int64  `json:"last_revision" yaml:"last_revision" toml:"last_revision"`
	Ranges       string `json:"ranges" yaml:"ranges" toml:"ranges"`
}

type branchDocument struct {
	Branches []BranchEntry `json:"branches" yaml:"branches" toml:"branches"`
}

type driftDocument struct {
	Drift []DriftEntry `json:"drift" yaml:"drift" toml:"drift"`
}

// Writer renders reports in one format.
type Writer struct {
	format Format
}

// NewWriter constructs a Writer for the named format.
func NewWriter(formatName string) (*Writer, error) {
	format, formatError := ParseFormat(formatName)
	if formatError != nil {
		return nil, formatError
	}
	return &Writer{format: format}, nil
}

// Format reports the writer's format.
func (writer *Writer) Format() Format {
	return writer.format
}

// WriteBranches renders branches; the text format emits one "<author>: <branch>" line per branch.
func (writer *Writer) WriteBranches(output io.Writer, branches []mergestate.BranchInfo) error {
	if writer.format == FormatText {
		var builder strings.Builder
		for _, branch := range branches {
			builder.WriteString(branch.Summary())
			builder.WriteString(lineTerminatorConstant)
		}
		return writeString(output, builder.String())
	}

	entries := make([]BranchEntry, 0, len(branches))
	for _, branch := range branches {
		entries = append(entries, BranchEntry{
			Name:       branch.Name,
			Author:     branch.LastRevision.Author,
			Revision:   branch.LastRevision.Revision,
			LastCommit: branch.LastRevision.CreatedAt.UTC(),
			Summary:    branch.Summary(),
		})
	}
	return writer.encode(output, branchDocument{Branches: entries})
}

// WriteDrift renders drift records; the text format emits one "<branch> r<lastRevision>" line per record.
func (writer *Writer) WriteDrift(output io.Writer, records []mergeinfo.MergeRecord) error {
	if writer.format == FormatText {
		var builder strings.Builder
		for _, record := range records {
			builder.WriteString(fmt.Sprintf(driftLineTemplateConstant, record.BranchName, record.LastRevision()))
		}
		return writeString(output, builder.String())
	}

	entries := make([]DriftEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, DriftEntry{
			Branch:       record.BranchName,
			LastRevision: record.LastRevision(),
			Ranges:       strings.TrimPrefix(record.String(), record.BranchName+":"),
		})
	}
	return writer.encode(output, driftDocument{Drift: entries})
}

func (writer *Writer) encode(output io.Writer, document any) error {
	var encoded []byte
	var encodeError error
	switch writer.format {
	case FormatYAML:
		encoded, encodeError = yaml.Marshal(document)
	case FormatJSON:
		encoded, encodeError = json.MarshalIndent(document, "", jsonIndentConstant)
		encoded = append(encoded, lineTerminatorConstant...)
	case FormatTOML:
		encoded, encodeError = toml.Marshal(document)
	default:
		return UnsupportedFormatError{Value: string(writer.format)}
	}
	if encodeError != nil {
		return fmt.Errorf(encodeFailureTemplateConstant, writer.format, encodeError)
	}
	return writeString(output, string(encoded))
}

func writeString(output io.Writer, content string) error {
	if _, writeError := io.WriteString(output, content); writeError != nil {
		return fmt.Errorf(writeFailureTemplateConstant, writeError)
	}
	return nil
}
