// Package program defines structured training plans and the (week, day)
// progress cursor through them. The catalog ships as embedded YAML and is
// read-only reference data.
package program

import (
	_ "embed"
	"fmt"

	"github.com/claude/hybridtrack/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ProgramExercise is one prescribed exercise within a program day.
type ProgramExercise struct {
	Name  string `json:"name" yaml:"name"`
	Sets  int    `json:"sets" yaml:"sets"`
	Reps  string `json:"reps" yaml:"reps"`
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Day is one training day within a program week.
type Day struct {
	DayNumber int               `json:"day_number" yaml:"day_number"`
	Name      string            `json:"name" yaml:"name"`
	Exercises []ProgramExercise `json:"exercises" yaml:"exercises"`
}

// Week is an ordered sequence of training days.
type Week struct {
	WeekNumber int   `json:"week_number" yaml:"week_number"`
	Days       []Day `json:"days" yaml:"days"`
}

// Program is a named, fixed-shape training plan.
type Program struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Weeks       []Week `json:"weeks" yaml:"weeks"`
}

// Catalog is the set of available programs, looked up by id.
type Catalog struct {
	programs []Program
	byID     map[string]*Program
}

// LoadCatalog parses the embedded program catalog.
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(catalogYAML)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Programs []Program `yaml:"programs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing program catalog: %w", err)
	}

	c := &Catalog{
		programs: doc.Programs,
		byID:     make(map[string]*Program, len(doc.Programs)),
	}
	for i := range c.programs {
		p := &c.programs[i]
		if p.ID == "" {
			return nil, fmt.Errorf("program %d: id is required", i)
		}
		if len(p.Weeks) == 0 {
			return nil, fmt.Errorf("program %s: at least one week is required", p.ID)
		}
		for wi, w := range p.Weeks {
			if len(w.Days) == 0 {
				return nil, fmt.Errorf("program %s week %d: at least one day is required", p.ID, wi+1)
			}
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("program %s: duplicate id", p.ID)
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

// Programs returns all catalog programs.
func (c *Catalog) Programs() []Program {
	return c.programs
}

// Get looks up a program by id.
func (c *Catalog) Get(id string) (*Program, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Start returns the cursor for a freshly selected program.
func Start() *models.ProgramProgress {
	return &models.ProgramProgress{Week: 1, Day: 1}
}

// Advance moves the cursor one day forward through p. Within a week it
// steps to the next day; past the last day it steps to day 1 of the next
// week; past the last day of the last week it returns nil, meaning the
// program is complete.
func Advance(p *Program, cur models.ProgramProgress) *models.ProgramProgress {
	week := findWeek(p, cur.Week)
	if week == nil {
		return nil
	}

	if cur.Day < len(week.Days) {
		return &models.ProgramProgress{Week: cur.Week, Day: cur.Day + 1}
	}
	if cur.Week < len(p.Weeks) {
		return &models.ProgramProgress{Week: cur.Week + 1, Day: 1}
	}
	return nil
}

// DayAt returns the program day under the cursor, if the cursor is in
// bounds.
func DayAt(p *Program, cur models.ProgramProgress) (*Day, bool) {
	week := findWeek(p, cur.Week)
	if week == nil {
		return nil, false
	}
	if cur.Day < 1 || cur.Day > len(week.Days) {
		return nil, false
	}
	return &week.Days[cur.Day-1], true
}

func findWeek(p *Program, weekNumber int) *Week {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber == weekNumber {
			return &p.Weeks[i]
		}
	}
	return nil
}
