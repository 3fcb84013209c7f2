// Package registry serves worker and client facts. The scheduling core only reads from it.
package registry

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

type Registry interface {
	Workers() []domain.Worker
	Worker(id string) (domain.Worker, bool)
	Clients() []domain.ClientSite
	Client(id string) (domain.ClientSite, bool)
}

// Document is the on-disk registry layout.
type Document struct {
	Clients []domain.ClientSite `yaml:"clients"`
	Workers []domain.Worker     `yaml:"workers"`
}

// Static is an immutable registry built once from a Document.
type Static struct {
	workers    []domain.Worker
	clients    []domain.ClientSite
	workerByID map[string]int
	clientByID map[string]int
}

func NewStatic(doc Document) (*Static, error) {
	s := &Static{
		workerByID: make(map[string]int, len(doc.Workers)),
		clientByID: make(map[string]int, len(doc.Clients)),
	}

	for _, c := range doc.Clients {
		if c.ID == "" {
			return nil, fmt.Errorf("registry: client %q has no id", c.DisplayName)
		}
		if _, dup := s.clientByID[c.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate client id %q", c.ID)
		}
		if c.DisplayName == "" {
			c.DisplayName = c.ID
		}
		s.clientByID[c.ID] = len(s.clients)
		s.clients = append(s.clients, c)
	}

	for _, w := range doc.Workers {
		if w.ID == "" {
			return nil, fmt.Errorf("registry: worker %q has no id", w.DisplayName)
		}
		if _, dup := s.workerByID[w.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate worker id %q", w.ID)
		}
		if w.DisplayName == "" {
			w.DisplayName = w.ID
		}
		s.workerByID[w.ID] = len(s.workers)
		s.workers = append(s.workers, w)
	}

	sort.SliceStable(s.clients, func(i, j int) bool { return s.clients[i].ID < s.clients[j].ID })
	sort.SliceStable(s.workers, func(i, j int) bool { return s.workers[i].ID < s.workers[j].ID })
	for i, c := range s.clients {
		s.clientByID[c.ID] = i
	}
	for i, w := range s.workers {
		s.workerByID[w.ID] = i
	}

	return s, nil
}

func Parse(data []byte) (*Static, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("registry: document is empty")
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: decode document: %w", err)
	}
	return NewStatic(doc)
}

func LoadReader(r io.Reader) (*Static, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("registry: read document: %w", err)
	}
	return Parse(content)
}

func LoadFile(path string) (*Static, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	s, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("registry: %s: %w", path, err)
	}
	return s, nil
}

// Marshal renders a Document the way LoadFile expects it.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("registry: encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("registry: encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Static) Workers() []domain.Worker {
	out := make([]domain.Worker, len(s.workers))
	copy(out, s.workers)
	return out
}

func (s *Static) Worker(id string) (domain.Worker, bool) {
	i, ok := s.workerByID[id]
	if !ok {
		return domain.Worker{}, false
	}
	return s.workers[i], true
}

func (s *Static) Clients() []domain.ClientSite {
	out := make([]domain.ClientSite, len(s.clients))
	copy(out, s.clients)
	return out
}

func (s *Static) Client(id string) (domain.ClientSite, bool) {
	i, ok := s.clientByID[id]
	if !ok {
		return domain.ClientSite{}, false
	}
	return s.clients[i], true
}

func WorkerIDs(r Registry) []string {
	workers := r.Workers()
	ids := make([]string, len(workers))
	for i, w := range workers {
		ids[i] = w.ID
	}
	return ids
}
