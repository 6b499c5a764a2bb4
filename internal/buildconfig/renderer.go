package buildconfig

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/afero"

	"github.com/temirov/svntools/internal/cadence"
)

const (
	templateNameConstant                 = "build-config"
	xmlFunctionNameConstant              = "xml"
	parseTemplateFailureTemplateConstant = "parse build configuration template: %w"
	readTemplateFailureTemplateConstant  = "read build configuration template %s: %w"
	renderFailureTemplateConstant        = "render build configuration: %w"
	writeFailureTemplateConstant         = "write build configuration: %w"
)

//go:embed templates/auto_branch_build.xml.tmpl
var defaultTemplate string

// BuildView exposes one planned build to templates.
type BuildView struct {
	ProjectName     string
	BranchName      string
	Queue           string
	Category        string
	Author          string
	Revision        int64
	IntervalSeconds int64
}

// DocumentView is the root value passed to templates.
type DocumentView struct {
	GeneratedAt time.Time
	Builds      []BuildView
}

// Renderer renders planned builds through a text template.
type Renderer struct {
	template *template.Template
}

// NewRenderer parses templateText, or the embedded default when it is blank.
func NewRenderer(templateText string) (*Renderer, error) {
	if len(strings.TrimSpace(templateText)) == 0 {
		templateText = defaultTemplate
	}
	parsedTemplate, parseError := template.New(templateNameConstant).
		Funcs(template.FuncMap{xmlFunctionNameConstant: escapeXML}).
		Option("missingkey=error").
		Parse(templateText)
	if parseError != nil {
		return nil, fmt.Errorf(parseTemplateFailureTemplateConstant, parseError)
	}
	return &Renderer{template: parsedTemplate}, nil
}

// LoadRenderer reads the template at templatePath, falling back to the embedded default for an empty path.
func LoadRenderer(fileSystem afero.Fs, templatePath string) (*Renderer, error) {
	trimmedPath := strings.TrimSpace(templatePath)
	if len(trimmedPath) == 0 {
		return NewRenderer(defaultTemplate)
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	content, readError := afero.ReadFile(fileSystem, trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(readTemplateFailureTemplateConstant, trimmedPath, readError)
	}
	return NewRenderer(string(content))
}

// Render writes the configuration for builds. Nothing is written when rendering fails.
func (renderer *Renderer) Render(output io.Writer, builds []cadence.PlannedBuild, generatedAt time.Time) error {
	document := DocumentView{GeneratedAt: generatedAt, Builds: make([]BuildView, 0, len(builds))}
	for _, build := range builds {
		document.Builds = append(document.Builds, BuildView{
			ProjectName:     build.Branch.Name,
			BranchName:      build.Branch.Name,
			Queue:           build.Queue,
			Category:        build.Category,
			Author:          build.Branch.LastRevision.Author,
			Revision:        build.Branch.LastRevision.Revision,
			IntervalSeconds: build.Directive.IntervalSeconds(),
		})
	}

	var rendered bytes.Buffer
	if executeError := renderer.template.Execute(&rendered, document); executeError != nil {
		return fmt.Errorf(renderFailureTemplateConstant, executeError)
	}
	if _, writeError := rendered.WriteTo(output); writeError != nil {
		return fmt.Errorf(writeFailureTemplateConstant, writeError)
	}
	return nil
}

func escapeXML(value string) (string, error) {
	var escaped strings.Builder
	if escapeError := xml.EscapeText(&escaped, []byte(value)); escapeError != nil {
		return "", escapeError
	}
	return escaped.String(), nil
}
