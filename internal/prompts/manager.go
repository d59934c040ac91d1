package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"tutor/ai/internal/models"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

const (
	TemplateSystem       = "system"
	TemplateTutoring     = "tutoring"
	TemplateStartMessage = "start_message"
)

// ErrTemplateNotFound is matched by every TemplateNotFoundError.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateNotFoundError names the template (and level variant, if any) that
// could not be resolved.
type TemplateNotFoundError struct {
	Name    string
	Variant string
}

func (e *TemplateNotFoundError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("template '%s' not found for level variant '%s'", e.Name, e.Variant)
	}
	return fmt.Sprintf("template '%s' not found", e.Name)
}

func (e *TemplateNotFoundError) Unwrap() error {
	return ErrTemplateNotFound
}

// PromptTemplate is one YAML template file.
type PromptTemplate struct {
	BasePrompt    string            `yaml:"base_prompt"`
	LevelVariants map[string]string `yaml:"level_variants"`
}

// PromptData holds the slots a template may reference.
type PromptData struct {
	Language    string
	Level       string
	UserMessage string
}

// PromptProvider renders the prompts sent to the model.
type PromptProvider interface {
	RenderSystemPrompt(language models.Language, level models.Level) (string, error)
	RenderTutoringPrompt(userMessage string, language models.Language, level models.Level) (string, error)
	RenderStartMessage(language models.Language, level models.Level) (string, error)
	TemplateNames() []string
}

// PromptManager holds the compiled templates. It is read-only after
// construction and safe for concurrent use.
type PromptManager struct {
	prompts map[string]map[string]*template.Template // name -> level band ("" when shared) -> compiled prompt
}

var _ PromptProvider = (*PromptManager)(nil)

// creates a new prompt manager from the embedded templates
func NewPromptManager() (*PromptManager, error) {
	return NewPromptManagerFS(templateFS, "templates")
}

// NewPromptManagerFS loads every .yaml file in dir of fsys.
func NewPromptManagerFS(fsys fs.FS, dir string) (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]map[string]*template.Template),
	}

	if err := pm.loadPrompts(fsys, dir); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

func (pm *PromptManager) RenderSystemPrompt(language models.Language, level models.Level) (string, error) {
	return pm.Render(TemplateSystem, level, PromptData{
		Language: string(language),
		Level:    string(level),
	})
}

// RenderTutoringPrompt embeds userMessage verbatim.
func (pm *PromptManager) RenderTutoringPrompt(userMessage string, language models.Language, level models.Level) (string, error) {
	return pm.Render(TemplateTutoring, level, PromptData{
		Language:    string(language),
		Level:       string(level),
		UserMessage: userMessage,
	})
}

func (pm *PromptManager) RenderStartMessage(language models.Language, level models.Level) (string, error) {
	return pm.Render(TemplateStartMessage, level, PromptData{
		Language: string(language),
		Level:    string(level),
	})
}

// Render executes the named template, picking the variant for the band of
// level when the template defines level variants.
func (pm *PromptManager) Render(name string, level models.Level, data PromptData) (string, error) {
	tmpl, err := pm.Template(name, level)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template '%s': %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// Template looks up a compiled template.
func (pm *PromptManager) Template(name string, level models.Level) (*template.Template, error) {
	variants, ok := pm.prompts[name]
	if !ok {
		return nil, &TemplateNotFoundError{Name: name}
	}

	if shared, ok := variants[""]; ok {
		return shared, nil
	}

	band := level.Band()
	tmpl, ok := variants[band]
	if !ok {
		return nil, &TemplateNotFoundError{Name: name, Variant: band}
	}
	return tmpl, nil
}

// TemplateNames lists loaded templates in sorted order.
func (pm *PromptManager) TemplateNames() []string {
	names := make([]string, 0, len(pm.prompts))
	for name := range pm.prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (pm *PromptManager) loadPrompts(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		variants, err := compileVariants(name, promptTemplate)
		if err != nil {
			return err
		}
		pm.prompts[name] = variants
	}

	return nil
}

func compileVariants(name string, pt PromptTemplate) (map[string]*template.Template, error) {
	if strings.TrimSpace(pt.BasePrompt) == "" && len(pt.LevelVariants) == 0 {
		return nil, fmt.Errorf("template %s is empty", name)
	}

	sources := map[string]string{"": pt.BasePrompt}
	if len(pt.LevelVariants) > 0 {
		sources = make(map[string]string, len(pt.LevelVariants))
		for band, variant := range pt.LevelVariants {
			var full strings.Builder
			if pt.BasePrompt != "" {
				full.WriteString(pt.BasePrompt)
				full.WriteString("\n\n")
			}
			full.WriteString(variant)
			sources[band] = full.String()
		}
	}

	compiled := make(map[string]*template.Template, len(sources))
	for band, source := range sources {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to compile template %s: %w", name, err)
		}
		compiled[band] = tmpl
	}
	return compiled, nil
}
