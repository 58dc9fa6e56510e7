package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

var (
	ErrPollNotFound    = errors.New("poll not found")
	ErrArticleNotFound = errors.New("article not found")
)

type catalogFile struct {
	Sections []struct {
		Title  string   `yaml:"title"`
		Prompt string   `yaml:"prompt"`
		Poll   string   `yaml:"poll"`
		Polls  []string `yaml:"polls"`
	} `yaml:"sections"`
	Polls []struct {
		Name string `yaml:"name"`
		File string `yaml:"file"`
		Quiz bool   `yaml:"quiz"`
	} `yaml:"polls"`
	Emergency struct {
		Title     string `yaml:"title"`
		Animation string `yaml:"animation"`
		Articles  []struct {
			Title    string   `yaml:"title"`
			Messages []string `yaml:"messages"`
		} `yaml:"articles"`
	} `yaml:"emergency"`
}

// Catalog is the read-only dataset store: menu sections, polls and emergency articles.
// It is loaded once at startup.
type Catalog struct {
	sections       []entities.Section
	polls          map[string]*entities.Poll
	pollNames      []string
	emergencyTitle string
	articles       []entities.Article
}

// NewCatalog loads the YAML catalog at path. Dataset files are resolved
// relative to the catalog's directory.
func NewCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f catalogFile
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}

	c := &Catalog{
		polls:          make(map[string]*entities.Poll, len(f.Polls)),
		emergencyTitle: f.Emergency.Title,
	}

	base := filepath.Dir(path)
	for _, p := range f.Polls {
		if p.Name == "" {
			return nil, errors.New("catalog poll without name")
		}
		if _, dup := c.polls[p.Name]; dup {
			return nil, fmt.Errorf("duplicate poll %q", p.Name)
		}

		file := p.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		poll, err := LoadDataset(file)
		if err != nil {
			return nil, fmt.Errorf("load poll %q: %w", p.Name, err)
		}
		poll.Name = p.Name
		poll.Quiz = p.Quiz

		c.polls[p.Name] = poll
		c.pollNames = append(c.pollNames, p.Name)
	}

	for _, s := range f.Sections {
		sec := entities.Section{Title: s.Title, Prompt: s.Prompt, Poll: s.Poll, Polls: s.Polls}
		for _, name := range append([]string{s.Poll}, s.Polls...) {
			if name == "" {
				continue
			}
			if _, ok := c.polls[name]; !ok {
				return nil, fmt.Errorf("section %q: %w: %q", s.Title, ErrPollNotFound, name)
			}
		}
		c.sections = append(c.sections, sec)
	}

	for _, a := range f.Emergency.Articles {
		c.articles = append(c.articles, entities.Article{
			Title:     a.Title,
			Animation: f.Emergency.Animation,
			Messages:  a.Messages,
		})
	}

	return c, nil
}

// Poll returns a poll by name.
func (c *Catalog) Poll(name string) (*entities.Poll, error) {
	p, ok := c.polls[name]
	if !ok {
		return nil, ErrPollNotFound
	}
	return p, nil
}

// PollNames lists polls in catalog order.
func (c *Catalog) PollNames() []string {
	return c.pollNames
}

func (c *Catalog) Sections() []entities.Section {
	return c.sections
}

// Section finds a start menu section by title.
func (c *Catalog) Section(title string) (entities.Section, bool) {
	for _, s := range c.sections {
		if s.Title == title {
			return s, true
		}
	}
	return entities.Section{}, false
}

// EmergencyTitle is the start menu entry of the emergency articles, empty when there are none.
func (c *Catalog) EmergencyTitle() string {
	if len(c.articles) == 0 {
		return ""
	}
	return c.emergencyTitle
}

func (c *Catalog) Articles() []entities.Article {
	return c.articles
}

// Article finds an emergency article by title.
func (c *Catalog) Article(title string) (entities.Article, error) {
	for _, a := range c.articles {
		if a.Title == title {
			return a, nil
		}
	}
	return entities.Article{}, ErrArticleNotFound
}
