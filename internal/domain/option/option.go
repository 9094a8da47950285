package option

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptySet    = errors.New("option set cannot be empty")
	ErrMissingID   = errors.New("option id is required")
	ErrDuplicateID = errors.New("option ids must be unique")
)

// VotingOption is one of the proposals a participant can vote for
type VotingOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref,omitempty"`
	ImageHint   string `json:"image_hint,omitempty"`
}

// Set is the fixed, ordered collection of options for a voting round.
// Its order is the display order and the tie-scan order.
type Set struct {
	options []VotingOption
	byID    map[string]int
}

// NewSet validates and freezes an option list
func NewSet(options []VotingOption) (*Set, error) {
	if len(options) == 0 {
		return nil, ErrEmptySet
	}

	s := &Set{
		options: make([]VotingOption, 0, len(options)),
		byID:    make(map[string]int, len(options)),
	}
	for _, opt := range options {
		if strings.TrimSpace(opt.ID) == "" {
			return nil, fmt.Errorf("%w (name %q)", ErrMissingID, opt.Name)
		}
		if _, dup := s.byID[opt.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, opt.ID)
		}
		s.byID[opt.ID] = len(s.options)
		s.options = append(s.options, opt)
	}
	return s, nil
}

// MustNewSet is NewSet for static data
func MustNewSet(options []VotingOption) *Set {
	s, err := NewSet(options)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns a copy of the options in display order
func (s *Set) All() []VotingOption {
	return append([]VotingOption(nil), s.options...)
}

// IDs returns option ids in display order
func (s *Set) IDs() []string {
	ids := make([]string, len(s.options))
	for i, opt := range s.options {
		ids[i] = opt.ID
	}
	return ids
}

// Get returns the option with the given id
func (s *Set) Get(id string) (VotingOption, bool) {
	i, ok := s.byID[id]
	if !ok {
		return VotingOption{}, false
	}
	return s.options[i], true
}

// Contains reports whether id names a configured option
func (s *Set) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len is the number of options
func (s *Set) Len() int {
	return len(s.options)
}

// Defaults are the proposals of the current round.
func Defaults() []VotingOption {
	return []VotingOption{
		{
			ID:          "sacedon",
			Name:        "Opción A: Fin de Semana en Sacedón",
			Description: "Nos vamos de casa rural a Sacedón. Incluye alojamiento, cena y rutas por la naturaleza.",
			ImageRef:    "sacedon.jpg",
			ImageHint:   "rural landscape",
		},
		{
			ID:          "taberna",
			Name:        "Opción B: LA TABERNA, Torres de la Alameda",
			Description: "Restaurante de comida tradicional con buena fama. Perfecto para una comida de grupo.",
			ImageRef:    "taberna.jpg",
			ImageHint:   "traditional restaurant",
		},
		{
			ID:          "bife",
			Name:        "Opción B: EL BIFE, Arganda",
			Description: "Ideal para amantes de la carne. Un clásico que no falla para una buena comilona.",
			ImageRef:    "bife.jpg",
			ImageHint:   "steakhouse grill",
		},
		{
			ID:          "quinta",
			Name:        "Opción B: QUINTA SAN ANTONIO, Velilla",
			Description: "Un sitio que ya conocemos, con un ambiente agradable y con mesa redonda asegurada.",
			ImageRef:    "quinta.jpg",
			ImageHint:   "elegant restaurant",
		},
	}
}
