package exercise

import (
	"context"
	"fmt"

	"github.com/takallem/takallem/internal/course"
	"github.com/takallem/takallem/internal/enroll"
	"github.com/takallem/takallem/internal/progression"
)

// Page is one screen of a lecture.
type Page struct {
	Title string
	Body  []string

	// Media lists audio or image references the page points at.
	Media []string
}

// Lecture pages through lecture content. Finishing the last page passes the
// module when it is the frontier.
type Lecture struct {
	machine  *progression.Machine
	resource *course.Resource
	pages    []Page
	page     int
}

var _ Controller = (*Lecture)(nil)

// NewLecture builds a Lecture controller.
func NewLecture(r *course.Resource, env Env) *Lecture {
	return &Lecture{
		machine:  progression.NewMachine(env.Service, progression.FrontierOnly{}, env.Progress, env.ModuleNumber),
		resource: r,
		pages:    lecturePages(r),
	}
}

func lecturePages(r *course.Resource) []Page {
	var pages []Page
	switch r.Type {
	case course.VocabLecture:
		for _, w := range r.VocabWords {
			p := Page{Title: w.Word, Body: []string{w.Meaning}}
			if w.VocabAudio != "" {
				p.Media = []string{w.VocabAudio}
			}
			pages = append(pages, p)
		}
	case course.LetterSpeakingLecture:
		media := []string{}
		if r.LetterAudio != "" {
			media = append(media, r.LetterAudio)
		}
		media = append(media, r.WordAudios...)
		pages = append(pages, Page{Title: r.Letter, Body: r.Content, Media: media})
	case course.LetterWritingLecture:
		pages = append(pages, Page{Title: r.Letter, Body: r.Content, Media: r.LetterWritingSequence})
	default:
		for i, c := range r.Content {
			pages = append(pages, Page{Title: fmt.Sprintf("%d/%d", i+1, len(r.Content)), Body: []string{c}})
		}
	}
	if len(pages) == 0 {
		pages = []Page{{Title: string(r.Type)}}
	}
	return pages
}

func (l *Lecture) Kind() Kind { return KindLecture }
func (l *Lecture) Resource() *course.Resource { return l.resource }
func (l *Lecture) ModuleNumber() int { return l.machine.ModuleNumber() }
func (l *Lecture) Progress() course.CourseProgress { return l.machine.Progress() }
func (l *Lecture) Ready() error { return nil }
func (l *Lecture) Busy() bool { return l.machine.Busy() }

// Pages returns every page.
func (l *Lecture) Pages() []Page { return l.pages }

// Page returns the current page and its index.
func (l *Lecture) Page() (Page, int) { return l.pages[l.page], l.page }

// LastPage reports whether the current page is the last one.
func (l *Lecture) LastPage() bool { return l.page == len(l.pages)-1 }

// Prev moves back a page.
func (l *Lecture) Prev() {
	if l.page > 0 {
		l.page--
	}
}

// Next turns the page, or on the last page finishes the lecture.
func (l *Lecture) Next(ctx context.Context) (progression.Outcome, error) {
	if !l.LastPage() {
		l.page++
		return progression.OutcomeNextProblem, nil
	}
	return l.machine.Advance(ctx, progression.Position{Index: l.page, Length: len(l.pages)})
}

// DialectPick lets the learner choose the dialect for the rest of the course.
type DialectPick struct {
	env      Env
	resource *course.Resource
	progress course.CourseProgress
	user     *course.User
}

var _ Controller = (*DialectPick)(nil)

// NewDialectPick builds a DialectPick controller.
func NewDialectPick(r *course.Resource, env Env) *DialectPick {
	return &DialectPick{env: env, resource: r, progress: env.Progress}
}

func (d *DialectPick) Kind() Kind { return KindDialect }
func (d *DialectPick) Resource() *course.Resource { return d.resource }
func (d *DialectPick) ModuleNumber() int { return d.env.ModuleNumber }
func (d *DialectPick) Progress() course.CourseProgress { return d.progress }
func (d *DialectPick) Ready() error { return nil }

// Options returns the selectable dialects.
func (d *DialectPick) Options() []course.DialectOption { return d.resource.Dialects }

// Frontier reports whether choosing a dialect would make any calls.
func (d *DialectPick) Frontier() bool { return progression.IsFrontier(d.progress, d.env.ModuleNumber) }

// User returns the user as last returned by the chain, if it got that far.
func (d *DialectPick) User() (course.User, bool) {
	if d.user == nil {
		return course.User{}, false
	}
	return *d.user, true
}

// Choose runs the dialect chain. Off the frontier nothing is called and the
// outcome is still OutcomeHome. Whatever the chain applied before a failure
// is kept.
func (d *DialectPick) Choose(ctx context.Context, dialect course.Dialect) (progression.Outcome, error) {
	if !d.Frontier() {
		return progression.OutcomeHome, nil
	}
	res, err := enroll.SelectDialect(ctx, d.env.Service, d.progress, d.env.ModuleNumber, dialect)
	if res.Progress != nil {
		d.progress = *res.Progress
	}
	if res.User != nil {
		d.user = res.User
	}
	if err != nil {
		return progression.OutcomeStay, err
	}
	return progression.OutcomeHome, nil
}
